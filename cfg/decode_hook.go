// Copyright 2024 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cfg

import (
	"net/url"
	"reflect"

	"github.com/mitchellh/mapstructure"
)

// hookFunc converts the string-typed fields viper hands back from flags or a
// YAML scalar into their richer Go types before mapstructure assigns them
// onto Config.
func hookFunc() mapstructure.DecodeHookFuncType {
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}

		s := data.(string)
		switch t {
		case reflect.TypeOf(url.URL{}):
			u, err := url.Parse(s)
			if err != nil {
				return nil, err
			}
			return *u, nil
		default:
			return data, nil
		}
	}
}

// DecodeHook composes the custom conversions above with mapstructure's
// built-in TextUnmarshaler support (which handles LogSeverity and
// ResolvedPath via their UnmarshalText methods) and its default duration
// hook.
func DecodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		hookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
	)
}
