package entity

// FocusKind тип цели фокуса
type FocusKind int

const (
	FocusNone FocusKind = iota
	FocusBody
	FocusConstellation
)

func (k FocusKind) String() string {
	switch k {
	case FocusBody:
		return "body"
	case FocusConstellation:
		return "constellation"
	default:
		return "none"
	}
}

// FocusTarget текущая выделенная цель: тело, созвездие или ничего
type FocusTarget struct {
	Kind FocusKind
	ID   string
}

// IsNone сообщает, что ничего не выделено
func (f FocusTarget) IsNone() bool {
	return f.Kind == FocusNone
}
