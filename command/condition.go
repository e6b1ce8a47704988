package command

import (
	"strings"

	"github.com/mwantia/vcat/data"
	"gitlab.com/tozd/go/errors"
)

// ParseCondition parses a metadata condition into criteria that one triple
// must satisfy. Accepted forms are "attribute=value" and
// "attribute <operator> value", e.g. "class like %org%".
func ParseCondition(expr string) ([]data.Criterion, error) {
	fields := strings.Fields(expr)
	switch {
	case len(fields) >= 3:
		for _, width := range []int{2, 1} {
			if len(fields) < width+2 {
				continue
			}

			op, err := data.ParseOperator(strings.Join(fields[1:1+width], " "))
			if err != nil {
				continue
			}
			return data.AttributeIs(fields[0], op, strings.Join(fields[1+width:], " ")), nil
		}

	case len(fields) == 1:
		if attribute, value, ok := strings.Cut(expr, "="); ok && attribute != "" {
			return data.AttributeIs(attribute, data.OpEqual, value), nil
		}
	}

	return nil, errors.Errorf("%w: cannot parse condition '%s'", data.ErrInvalid, expr)
}

// ParseAVU parses "attribute=value" or "attribute=value=unit".
func ParseAVU(expr string) (data.AVU, error) {
	parts := strings.SplitN(expr, "=", 3)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return data.AVU{}, errors.Errorf("%w: cannot parse triple '%s'", data.ErrInvalid, expr)
	}
	return data.NewAVU(parts[0], parts[1], parts[2:]...), nil
}
