// Copyright 2024 The flint Authors
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

package harness

import (
	"reflect"
	"testing"
)

func admitted(w Window, steps int) []int {
	var got []int
	for step := 0; step < steps; step++ {
		if w.Admit(step) {
			got = append(got, step)
		}
	}
	return got
}

func TestWindowAdmit(t *testing.T) {
	for _, tt := range []struct {
		name string
		w    Window
		want []int
	}{
		{
			name: "everything",
			w:    Window{Skip: 0, Count: -1, Every: 1},
			want: []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19},
		},
		{
			name: "skip count every",
			w:    Window{Skip: 2, Count: 10, Every: 3},
			want: []int{2, 5, 8, 11},
		},
		{
			name: "count zero",
			w:    Window{Skip: 0, Count: 0, Every: 1},
			want: nil,
		},
		{
			name: "every defaults to one",
			w:    Window{Skip: 18, Count: -1, Every: 0},
			want: []int{18, 19},
		},
		{
			name: "stride from skip",
			w:    Window{Skip: 1, Count: -1, Every: 4},
			want: []int{1, 5, 9, 13, 17},
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			got := admitted(tt.w, 20)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("admitted steps = %v, want %v", got, tt.want)
			}
		})
	}
}
