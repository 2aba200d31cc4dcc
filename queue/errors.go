// Copyright 2025 Poiesic Systems
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


package queue

import "errors"

var (
	// ErrNoTask indicates an empty poll: no task is ready for the requested
	// kind. Consumers back off and poll again.
	ErrNoTask = errors.New("no task ready")

	// ErrInvalidTask indicates a task failed validation.
	ErrInvalidTask = errors.New("invalid task")

	// ErrStaleReceipt indicates an ack or nack arrived after the delivery's
	// lease expired and was reclaimed. The task has been redelivered; the
	// late caller must not touch it again.
	ErrStaleReceipt = errors.New("stale delivery receipt")
)
