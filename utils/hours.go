package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// DiffHours computes end - start for two "HH:MM:SS" strings as hours,
// truncated to one decimal place. An end before start yields a negative
// value; overnight spans are not handled.
func DiffHours(start, end string) (float64, error) {
	tenths, err := DiffTenths(start, end)
	if err != nil {
		return 0, err
	}
	return float64(tenths) / 10, nil
}

// DiffTenths is DiffHours in integer tenths of an hour, so totals can be
// summed without float drift. One tenth is 360 seconds; integer division
// truncates toward zero for either sign.
func DiffTenths(start, end string) (int, error) {
	startSec, err := hourToSeconds(start)
	if err != nil {
		return 0, err
	}
	endSec, err := hourToSeconds(end)
	if err != nil {
		return 0, err
	}
	return (endSec - startSec) / 360, nil
}

func hourToSeconds(hour string) (int, error) {
	parts := strings.Split(hour, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid hour format %q, expected HH:MM:SS", hour)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour component in %q", hour)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute component in %q", hour)
	}
	s, err := strconv.Atoi(parts[2])
	if err != nil || s < 0 || s > 59 {
		return 0, fmt.Errorf("invalid second component in %q", hour)
	}
	return h*3600 + m*60 + s, nil
}
