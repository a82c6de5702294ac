// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
// Filer and FSFiler back manifest.Tracker's record writes (§4.I): one
// file per run_id under a base directory, with no read-back path — the
// tracker only ever calls CreateFile, never reopens what it wrote.
package data

import (
	"os"
	"path/filepath"
	"strings"
)

// Filer persists a named blob and reports the path it was written to.
type Filer interface {
	CreateFile(name string, data []byte) (string, error)
}

// FSFiler writes files under BasePath, creating any missing intermediate
// directories (manifest records are nested by run_id, not flat).
type FSFiler struct {
	BasePath string
}

func (fs *FSFiler) CreateFile(name string, data []byte) (string, error) {
	filePath := filepath.Join(fs.BasePath, name)
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return "", NewError(KindInternal, "create directory for "+filePath, err)
	}
	if err := os.WriteFile(filePath, data, 0o644); err != nil {
		return "", NewError(KindInternal, "write "+filePath, err)
	}
	return filePath, nil
}

// NewFilerFromString resolves a Filer from a "scheme://" spec, per
// §4.I's config surface. Only the file:// scheme is supported; any other
// scheme (including the b2:// archival mirror, which is wired separately
// via manifest.NewWithArchive) returns nil.
func NewFilerFromString(spec string) Filer {
	if rest, ok := strings.CutPrefix(spec, "file://"); ok {
		return &FSFiler{BasePath: rest}
	}
	return nil
}
