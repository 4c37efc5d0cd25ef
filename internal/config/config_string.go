package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Join formats the elements of a and separates them with sep.
func Join[T any](a []T, sep string) string {
	s := make([]string, len(a))
	for i, v := range a {
		s[i] = fmt.Sprint(v)
	}
	return strings.Join(s, sep)
}

func (c *Config) String() string {
	s := strings.Builder{}
	s.WriteString("Proposers: ")
	s.WriteString(strconv.Itoa(c.Proposers))
	s.WriteString(", Acceptors: ")
	s.WriteString(strconv.Itoa(c.Acceptors))
	s.WriteString(", Values: ")
	s.WriteString(Join(c.SimConfig().Values, ", "))
	s.WriteString(", ReceiveTimeout: ")
	s.WriteString(strconv.FormatUint(c.ReceiveTimeout, 10))
	s.WriteString(", PhaseBudget: ")
	s.WriteString(strconv.FormatUint(c.PhaseBudget, 10))
	if c.MaxTicks > 0 {
		s.WriteString(", MaxTicks: ")
		s.WriteString(strconv.FormatUint(c.MaxTicks, 10))
	}
	s.WriteString(", Seed: ")
	s.WriteString(strconv.FormatInt(c.Seed, 10))
	if c.Seeds > 1 {
		s.WriteString(", Seeds: ")
		s.WriteString(strconv.Itoa(c.Seeds))
	}
	return s.String()
}
