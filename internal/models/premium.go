package models

// PremiumType - тип платной подписки пользователя.
type PremiumType int8

const (
	PremiumNone PremiumType = iota
	PremiumClassic
	PremiumFull
	PremiumBasic
)

func (t PremiumType) String() string {
	switch t {
	case PremiumNone:
		return "none"
	case PremiumClassic:
		return "classic"
	case PremiumFull:
		return "full"
	case PremiumBasic:
		return "basic"
	default:
		return "unknown"
	}
}

// Valid - значение входит в известный диапазон.
func (t PremiumType) Valid() bool {
	return t >= PremiumNone && t <= PremiumBasic
}
