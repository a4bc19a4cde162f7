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

package bps

import "strconv"

const (
	// VersionMajor is the major version of bps.
	VersionMajor = 3
	// VersionMinor is the minor version of bps.
	VersionMinor = 2
	// VersionPatch is the patch version of bps.
	VersionPatch = 1

	// Version is encoded as Major*1_000_000 + Minor*1_000 + Patch.
	Version = VersionMajor*1_000_000 + VersionMinor*1_000 + VersionPatch
)

// VersionString is the dotted form of Version.
var VersionString = strconv.Itoa(VersionMajor) + "." + strconv.Itoa(VersionMinor) + "." + strconv.Itoa(VersionPatch)

// GetVersion returns the version of the runtime the program is linked with.
func GetVersion() int {
	return Version
}
