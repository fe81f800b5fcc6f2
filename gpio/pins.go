package gpio

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// header maps the GPIO-capable positions of the 40 pin J8/P1 header to BCM
// numbers.
var header = map[int]int{
	3: 2, 5: 3, 7: 4, 8: 14, 10: 15,
	11: 17, 12: 18, 13: 27, 15: 22, 16: 23,
	18: 24, 19: 10, 21: 9, 22: 25, 23: 11,
	24: 8, 26: 7, 27: 0, 28: 1, 29: 5,
	31: 6, 32: 12, 33: 13, 35: 19, 36: 16,
	37: 26, 38: 20, 40: 21,
}

// BCM resolves a pin name to its BCM number. Accepted forms are "GPIO17",
// "17" and header positions such as "P1_11".
func BCM(name string) (int, error) {
	n := strings.ToUpper(strings.TrimSpace(name))
	switch {
	case strings.HasPrefix(n, "P1_"):
		pos, err := strconv.Atoi(n[len("P1_"):])
		if err != nil {
			return 0, errors.Errorf("bad header pin %q", name)
		}
		bcm, ok := header[pos]
		if !ok {
			return 0, errors.Errorf("header pin %q is not a GPIO", name)
		}
		return bcm, nil
	case strings.HasPrefix(n, "GPIO"):
		n = n[len("GPIO"):]
	}

	bcm, err := strconv.Atoi(n)
	if err != nil {
		return 0, errors.Errorf("bad pin name %q", name)
	}
	if bcm < 0 || bcm > 27 {
		return 0, errors.Errorf("pin %q out of range", name)
	}
	return bcm, nil
}
