package notifymanager

import "testing"

func TestIsNilNotification(t *testing.T) {
	var nilPtr *int
	var nilChan chan int
	var nilMap map[string]int
	var nilSlice []int
	var nilIface any

	for _, tc := range [...]struct {
		name string
		val  any
		want bool
	}{
		{`untyped nil`, nil, true},
		{`nil pointer`, nilPtr, true},
		{`nil chan`, nilChan, true},
		{`nil map`, nilMap, true},
		{`nil slice`, nilSlice, true},
		{`nil interface`, nilIface, true},
		{`non-nil pointer`, new(int), false},
		{`zero int`, 0, false},
		{`empty string`, ``, false},
		{`zero struct`, struct{}{}, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if got := isNilNotification(tc.val); got != tc.want {
				t.Errorf(`got %v, want %v`, got, tc.want)
			}
		})
	}
}
