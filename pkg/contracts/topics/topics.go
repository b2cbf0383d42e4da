package topics

const (
	// Eventos de aposta encaminhados pelo outbox publisher
	JackpotBets = "jackpot_bets"
)
