// Copyright (c) 2026 The Gnet Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

//go:build !linux

package ids

import errorx "github.com/panjf2000/bps/pkg/errors"

func openPipe() (int, int, error) {
	return -1, -1, errorx.ErrUnsupportedPlatform
}

func signal(int) error {
	return errorx.ErrUnsupportedPlatform
}

func drain(int) {}

func closeFD(int) error {
	return nil
}
