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

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestListRequestsTotal_Increments(t *testing.T) {
	before := testutil.ToFloat64(ListRequestsTotal)
	ListRequestsTotal.Inc()
	after := testutil.ToFloat64(ListRequestsTotal)

	assert.Equal(t, float64(1), after-before)
}

func TestTimer_ObservesDuration(t *testing.T) {
	stop := Timer("readdir")
	stop()

	count := testutil.CollectAndCount(DispatcherOpDuration)
	assert.GreaterOrEqual(t, count, 1)
}

func TestInodeCount_Gauge(t *testing.T) {
	InodeCount.Set(3)
	assert.Equal(t, float64(3), testutil.ToFloat64(InodeCount))
}
