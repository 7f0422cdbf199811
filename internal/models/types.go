package models

import (
	"encoding/json"
	"strconv"
)

// FlexInt is an int that unmarshals from either a JSON number or a numeric
// string. Provider usage blocks occasionally report token counts as strings,
// so transport parsing uses this instead of a plain int.
type FlexInt int

// UnmarshalJSON accepts numbers, numeric strings, and null. Anything else
// decodes to zero rather than failing the whole response parse.
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	var intVal int
	if err := json.Unmarshal(data, &intVal); err == nil {
		*f = FlexInt(intVal)
		return nil
	}

	var strVal string
	if err := json.Unmarshal(data, &strVal); err == nil {
		parsed, err := strconv.Atoi(strVal)
		if err != nil {
			*f = 0
			return nil
		}
		*f = FlexInt(parsed)
		return nil
	}

	*f = 0
	return nil
}

// MarshalJSON always emits a numeric value.
func (f FlexInt) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(f))
}

// Int returns the FlexInt as a standard int.
func (f FlexInt) Int() int {
	return int(f)
}
