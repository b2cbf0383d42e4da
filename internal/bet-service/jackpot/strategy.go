package jackpot

import "github.com/shopspring/decimal"

// Tipos de estratégia configurados por jackpot (tags fechadas, sem dispatch dinâmico)
type ContributionType string

const (
	ContributionFixed      ContributionType = "FIXED"
	ContributionPercentage ContributionType = "PERCENTAGE"
)

type RewardType string

const (
	RewardFixed    RewardType = "FIXED"
	RewardVariable RewardType = "VARIABLE"
)

// Params reúne os parâmetros das fórmulas. É um valor imutável construído no
// bootstrap a partir da configuração; as estratégias nunca leem estado global.
type Params struct {
	// Contribuição
	FixedRate   decimal.Decimal // FIXED: fração fixa do stake
	InitialRate decimal.Decimal // PERCENTAGE: fração inicial
	DecayRate   decimal.Decimal // PERCENTAGE: razão aplicada a cada múltiplo do valor inicial

	// Premiação
	FixedChance   decimal.Decimal // FIXED: chance constante por avaliação
	InitialChance decimal.Decimal // VARIABLE: piso quando current == initial
	GrowthRate    decimal.Decimal // VARIABLE: incremento até o teto quando current == max
}

// ContributionFunc calcula o valor contribuído ao pool a partir do stake
// e do estado numérico do jackpot
type ContributionFunc func(stake, current, initial decimal.Decimal) decimal.Decimal

// RewardFunc decide a elegibilidade de premiação a partir do estado do pool
// e de um sorteio uniforme já amostrado. A função é determinística dados os
// inputs: quem chama amostra o roll uma única vez por colocação (Draw) e o
// reaproveita em retries de transação — avaliação repetida não re-sorteia.
type RewardFunc func(current, initial, max decimal.Decimal, roll float64) bool

// Strategies resolve a função de cada tag. O sorteio aleatório é injetado
// para que testes consigam fixar o resultado.
type Strategies struct {
	params Params
	draw   func() float64 // uniforme em [0,1)
}

func NewStrategies(p Params, draw func() float64) *Strategies {
	return &Strategies{params: p, draw: draw}
}

// Draw amostra o sorteio uniforme da colocação
func (s *Strategies) Draw() float64 {
	return s.draw()
}

// Contribution retorna a função de contribuição da tag; tags desconhecidas
// caem na variante FIXED
func (s *Strategies) Contribution(t ContributionType) ContributionFunc {
	switch t {
	case ContributionPercentage:
		return s.percentageContribution
	default:
		return s.fixedContribution
	}
}

// Reward retorna a função de elegibilidade da tag; tags desconhecidas caem
// na variante FIXED
func (s *Strategies) Reward(t RewardType) RewardFunc {
	switch t {
	case RewardVariable:
		return s.variableReward
	default:
		return s.fixedReward
	}
}

// fixedContribution: stake × fração fixa
func (s *Strategies) fixedContribution(stake, _, _ decimal.Decimal) decimal.Decimal {
	return stake.Mul(s.params.FixedRate)
}

// percentageContribution: stake × (fração inicial × decay^k), onde k é o
// número de múltiplos inteiros do valor inicial que o pool já cresceu.
// A taxa cai conforme o pool cresce, evitando crescimento descontrolado.
func (s *Strategies) percentageContribution(stake, current, initial decimal.Decimal) decimal.Decimal {
	rate := s.params.InitialRate
	if initial.IsPositive() {
		k := current.Sub(initial).Div(initial).Floor()
		if k.IsPositive() {
			rate = rate.Mul(s.params.DecayRate.Pow(k))
		}
	}

	contribution := stake.Mul(rate)
	if contribution.IsNegative() {
		return decimal.Zero
	}
	return contribution
}

// fixedReward: elegível com chance constante
func (s *Strategies) fixedReward(_, _, _ decimal.Decimal, roll float64) bool {
	return meets(s.params.FixedChance, roll)
}

// variableReward: a chance cresce linearmente com (current−initial)/(max−initial),
// do piso InitialChance até InitialChance+GrowthRate (limitado a 1) no teto do pool
func (s *Strategies) variableReward(current, initial, max decimal.Decimal, roll float64) bool {
	return meets(s.variableChance(current, initial, max), roll)
}

func (s *Strategies) variableChance(current, initial, max decimal.Decimal) decimal.Decimal {
	one := decimal.New(1, 0)

	span := max.Sub(initial)
	progress := one
	if span.IsPositive() {
		progress = current.Sub(initial).Div(span)
		if progress.IsNegative() {
			progress = decimal.Zero
		} else if progress.GreaterThan(one) {
			progress = one
		}
	}

	chance := s.params.InitialChance.Add(s.params.GrowthRate.Mul(progress))
	if chance.GreaterThan(one) {
		return one
	}
	return chance
}

// meets compara o sorteio uniforme com a chance calculada
func meets(chance decimal.Decimal, roll float64) bool {
	return decimal.NewFromFloat(roll).LessThan(chance)
}
