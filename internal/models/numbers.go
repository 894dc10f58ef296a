package models

// NumberKind selects which upstream number series feeds the window.
type NumberKind string

const (
	NumberKindPrime     NumberKind = "p"
	NumberKindFibonacci NumberKind = "f"
	NumberKindEven      NumberKind = "e"
	NumberKindRandom    NumberKind = "r"
)

var numberKindPaths = map[NumberKind]string{
	NumberKindPrime:     "/primes",
	NumberKindFibonacci: "/fibo",
	NumberKindEven:      "/even",
	NumberKindRandom:    "/rand",
}

// ParseNumberKind validates a route parameter.
func ParseNumberKind(s string) (NumberKind, bool) {
	k := NumberKind(s)
	_, ok := numberKindPaths[k]
	return k, ok
}

// Path returns the upstream path serving this kind.
func (k NumberKind) Path() string {
	return numberKindPaths[k]
}

// NumbersResponse is the body returned by the window endpoint. Error is set only for
// degraded responses.
type NumbersResponse struct {
	WindowPrevState []float64 `json:"windowPrevState"`
	WindowCurrState []float64 `json:"windowCurrState"`
	Numbers         []float64 `json:"numbers"`
	Avg             string    `json:"avg"`
	Error           string    `json:"error,omitempty"`
}
