package paysheet

import (
	"github.com/denismitr/paysheet/internal/transcode"
	"github.com/denismitr/paysheet/internal/xlsx"
	"github.com/pkg/errors"
)

// ErrCorruptData means the persisted bytes are not a workbook holding the dataset sheet.
var ErrCorruptData = xlsx.ErrCorruptData

// ErrInvalidEncoding means the persisted text is not valid base64.
var ErrInvalidEncoding = transcode.ErrInvalidEncoding

var ErrEnvironmentUnavailable = errors.New("environment capability unavailable")
var ErrNoData = errors.New("no data to download")
var ErrInvalidRecord = errors.New("invalid payment record")
