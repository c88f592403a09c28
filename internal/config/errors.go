package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrInvalidSchedule     = errors.New("invalid assessment schedule")
	ErrInvalidArchitecture = errors.New("invalid function architecture")
	ErrPollingBudget       = errors.New("importer polling exceeds function timeout")
)

// MissingInputError reports required stack inputs that are blank or absent.
type MissingInputError struct {
	Keys []string
}

func (e MissingInputError) Error() string {
	if len(e.Keys) == 0 {
		return "missing required stack inputs"
	}
	keys := append([]string(nil), e.Keys...)
	sort.Strings(keys)
	return fmt.Sprintf("missing required stack inputs: %s", strings.Join(keys, ", "))
}
