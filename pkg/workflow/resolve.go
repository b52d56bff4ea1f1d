// Copyright 2025 Tom Barlow
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

package workflow

import (
	"errors"
	"strings"
	"sync/atomic"

	flowerrors "github.com/tombee/flowgen/pkg/errors"
	"github.com/tombee/flowgen/pkg/workflow/expression"
)

// ErrUnstableDocument is returned when rendering a finished document keeps
// attaching new step ids.
var ErrUnstableDocument = errors.New("step identifiers did not converge")

// resolveIdentifiers renders every expression in doc so that each step whose
// path is referenced gets its id. A step referenced only from an expression
// stored before it in the document is still reached, because the whole
// document is rendered before serialization starts. A second pass must not
// attach anything new.
func resolveIdentifiers(doc *Document, attached *atomic.Int64) error {
	render := func(at []string, e expression.Expression) error {
		if _, err := e.Wrapped(); err != nil {
			return flowerrors.Wrapf(err, "rendering %s", strings.Join(at, "."))
		}
		return nil
	}

	if err := doc.Walk(render); err != nil {
		return err
	}
	before := attached.Load()
	if err := doc.Walk(render); err != nil {
		return err
	}
	if attached.Load() != before {
		return ErrUnstableDocument
	}
	return nil
}
