package validation

import "strings"

// registerChecksums installs Brazilian national id rules: cpf (persons) and
// cnpj (companies). Punctuation such as "529.982.247-25" is accepted.
func registerChecksums(r *Registry) {
	r.Register("cpf", format(validCPF))
	r.Register("cnpj", format(validCNPJ))
}

// digitsOf strips the usual separators and returns the digits, or nil when
// anything else is left.
func digitsOf(s string) []int {
	s = strings.NewReplacer(".", "", "-", "", "/", "", " ", "").Replace(s)
	out := make([]int, 0, len(s))
	for _, c := range s {
		if c < '0' || c > '9' {
			return nil
		}
		out = append(out, int(c-'0'))
	}
	return out
}

func allSame(d []int) bool {
	for _, x := range d[1:] {
		if x != d[0] {
			return false
		}
	}
	return true
}

func validCPF(s string) bool {
	d := digitsOf(s)
	if len(d) != 11 || allSame(d) {
		return false
	}
	check := func(n int) int {
		sum := 0
		for i := 0; i < n; i++ {
			sum += d[i] * (n + 1 - i)
		}
		r := sum * 10 % 11
		if r == 10 {
			return 0
		}
		return r
	}
	return check(9) == d[9] && check(10) == d[10]
}

var (
	cnpjWeights1 = []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	cnpjWeights2 = []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
)

func validCNPJ(s string) bool {
	d := digitsOf(s)
	if len(d) != 14 || allSame(d) {
		return false
	}
	check := func(weights []int) int {
		sum := 0
		for i, w := range weights {
			sum += d[i] * w
		}
		if r := sum % 11; r >= 2 {
			return 11 - r
		}
		return 0
	}
	return check(cnpjWeights1) == d[12] && check(cnpjWeights2) == d[13]
}
