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

package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/panjf2000/bps"
	"github.com/panjf2000/bps/internal/wire"
	"github.com/panjf2000/bps/services/locale"
	"github.com/panjf2000/bps/services/navigator"
	"github.com/panjf2000/bps/services/netstatus"
	"github.com/panjf2000/bps/services/paymentservice"
	"github.com/panjf2000/bps/services/removablemedia"
)

type monitored struct {
	domain  func() int
	request func(flags int) error
}

var services = map[string]monitored{
	"locale":         {locale.GetDomain, locale.RequestEvents},
	"navigator":      {navigator.GetDomain, navigator.RequestEvents},
	"netstatus":      {netstatus.GetDomain, netstatus.RequestEvents},
	"paymentservice": {paymentservice.GetDomain, paymentservice.RequestEvents},
	"removablemedia": {removablemedia.GetDomain, removablemedia.RequestEvents},
}

func serviceNames() []string {
	names := make([]string, 0, len(services))
	for name := range services {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func serviceOf(ev *bps.Event) string {
	for name, s := range services {
		if s.domain() == ev.Domain() {
			return name
		}
	}
	return fmt.Sprintf("domain(%d)", ev.Domain())
}

// describe renders an event on one line.
func describe(ev *bps.Event) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s code=%d", serviceOf(ev), ev.Code())
	switch p := ev.Payload().(type) {
	case *wire.Message:
		for _, a := range p.Attrs {
			fmt.Fprintf(&sb, " %s=%q", a.Key, a.Value)
		}
	case locale.Locale:
		fmt.Fprintf(&sb, " locale=%q", p.String())
	case nil:
	default:
		fmt.Fprintf(&sb, " payload=%v", p)
	}
	return sb.String()
}
