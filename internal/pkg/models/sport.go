package models

import (
	"fmt"
	"strings"
)

// Sport is one of the court sports the aggregator tracks. Each sport has its
// own master/staging table pair, so the value doubles as a table name.
type Sport string

const (
	SportBadminton  Sport = "badminton"
	SportSquash     Sport = "squash"
	SportPickleball Sport = "pickleball"
)

func AllSports() []Sport {
	return []Sport{SportBadminton, SportSquash, SportPickleball}
}

func ParseSport(s string) (Sport, error) {
	switch Sport(strings.ToLower(strings.TrimSpace(s))) {
	case SportBadminton:
		return SportBadminton, nil
	case SportSquash:
		return SportSquash, nil
	case SportPickleball:
		return SportPickleball, nil
	}
	return "", fmt.Errorf("unknown sport %q (supported: badminton, squash, pickleball)", s)
}

func (s Sport) String() string { return string(s) }
