// Copyright 2023 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package gbzip2

import (
	"errors"

	"github.com/cosnicolaou/gbzip2/internal/block"
)

// FormatError is returned when a stream is syntactically invalid.
type FormatError = block.FormatError

// ChecksumError is returned when decoded data disagrees with a
// transmitted block or stream checksum.
type ChecksumError = block.ChecksumError

var errClosed = errors.New("gbzip2: writer is closed")
