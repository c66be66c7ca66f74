// field_value.go
//
// Form builder and response collection service with plan-gated submissions
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of snapform-api.
// snapform-api is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// snapform-api is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with snapform-api.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// ValueKind is the JSON shape of a submitted field value.
type ValueKind int

const (
	ValueNull ValueKind = iota
	ValueString
	ValueList
	ValueScalar
)

// FieldValue is a submitted answer: a string, a list of strings, null, or
// some other JSON scalar (kept in its textual form).
type FieldValue struct {
	Kind ValueKind
	Str  string
	List []string
}

func String(s string) FieldValue {
	return FieldValue{Kind: ValueString, Str: s}
}

func List(items ...string) FieldValue {
	return FieldValue{Kind: ValueList, List: items}
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (v *FieldValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*v = FieldValue{}
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = String(s)
	case '[':
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("FieldValue: lists may only contain strings: %w", err)
		}
		*v = List(items...)
	case '{':
		return fmt.Errorf("FieldValue: objects are not accepted")
	default:
		// numbers and booleans
		var scalar any
		if err := json.Unmarshal(data, &scalar); err != nil {
			return err
		}
		*v = FieldValue{Kind: ValueScalar, Str: string(data)}
	}
	return nil
}

// MarshalJSON implements the json.Marshaler interface.
func (v FieldValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case ValueString:
		return json.Marshal(v.Str)
	case ValueList:
		if v.List == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.List)
	case ValueScalar:
		return []byte(v.Str), nil
	}
	return []byte("null"), nil
}

// IsEmpty reports whether the value carries no answer. A list of blank
// strings is empty.
func (v FieldValue) IsEmpty() bool {
	switch v.Kind {
	case ValueString:
		return strings.TrimSpace(v.Str) == ""
	case ValueList:
		return lo.EveryBy(v.List, func(item string) bool {
			return strings.TrimSpace(item) == ""
		})
	case ValueScalar:
		return false
	}
	return true
}

// Text renders the value as a single cell, joining lists with sep.
func (v FieldValue) Text(sep string) string {
	switch v.Kind {
	case ValueString, ValueScalar:
		return v.Str
	case ValueList:
		return strings.Join(v.List, sep)
	}
	return ""
}
