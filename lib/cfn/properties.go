/*
Copyright 2021 Gravitational, Inc.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cfn

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/gravitational/trace"
)

// Properties are the resource properties of a custom resource request.
//
// CloudFormation passes every scalar property as a string
type Properties map[string]interface{}

// String returns the value of the required string property
func (r Properties) String(name string) (string, error) {
	value, ok := r[name]
	if !ok || value == nil {
		return "", trace.BadParameter("missing property %v", name)
	}
	return toString(value), nil
}

// OptionalString returns the value of the string property or an empty string
// if the property is missing
func (r Properties) OptionalString(name string) string {
	value, ok := r[name]
	if !ok || value == nil {
		return ""
	}
	return toString(value)
}

// Bool returns the value of the required boolean property.
// Any value other than a case-insensitive "true" is false
func (r Properties) Bool(name string) (bool, error) {
	value, err := r.String(name)
	if err != nil {
		return false, trace.Wrap(err)
	}
	return strings.EqualFold(strings.TrimSpace(value), "true"), nil
}

// OptionalBool returns the value of the boolean property or false
// if the property is missing
func (r Properties) OptionalBool(name string) bool {
	return strings.EqualFold(strings.TrimSpace(r.OptionalString(name)), "true")
}

// Int returns the value of the required integer property
func (r Properties) Int(name string) (int, error) {
	value, err := r.String(name)
	if err != nil {
		return 0, trace.Wrap(err)
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, trace.BadParameter("property %v: expected an integer, got %q", name, value)
	}
	return n, nil
}

// StringSlice returns the value of the required list property.
// A comma-separated string is accepted in place of a list
func (r Properties) StringSlice(name string) ([]string, error) {
	value, ok := r[name]
	if !ok || value == nil {
		return nil, trace.BadParameter("missing property %v", name)
	}
	switch value := value.(type) {
	case []interface{}:
		result := make([]string, 0, len(value))
		for _, item := range value {
			result = append(result, toString(item))
		}
		return result, nil
	case []string:
		return value, nil
	case string:
		return splitList(value), nil
	}
	return nil, trace.BadParameter("property %v: expected a list, got %T", name, value)
}

func splitList(value string) (result []string) {
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}

func toString(value interface{}) string {
	switch value := value.(type) {
	case string:
		return value
	case bool:
		return strconv.FormatBool(value)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case json.Number:
		return value.String()
	}
	return fmt.Sprint(value)
}
