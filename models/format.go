// models/format.go
package models

import "strings"

// Format закрытый набор известных форматов электронных книг.
// Пустое значение означает, что формат у элемента не определен
// (например, чистая аудиокнига без ebook-файла).
type Format string

const (
	FormatEPUB      Format = "epub"
	FormatPDF       Format = "pdf"
	FormatMOBI      Format = "mobi"
	FormatAZW3      Format = "azw3"
	FormatAudiobook Format = "audiobook"
	FormatUnknown   Format = ""
)

// ParseFormat приводит сырое значение формата из API к закрытому набору.
// Неизвестные, но непустые значения сохраняются как есть, чтобы не терять
// информацию о типе файла; MIME для них всегда generic.
func ParseFormat(raw string) Format {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "epub":
		return FormatEPUB
	case "pdf":
		return FormatPDF
	case "mobi":
		return FormatMOBI
	case "azw3":
		return FormatAZW3
	case "audiobook":
		return FormatAudiobook
	case "":
		return FormatUnknown
	default:
		return Format(strings.ToLower(strings.TrimSpace(raw)))
	}
}

// Known сообщает, определен ли формат элемента
func (f Format) Known() bool {
	return f != FormatUnknown
}

// MimeType возвращает MIME-тип для формата.
// Отображение тотально: нераспознанные форматы получают generic-тип.
func (f Format) MimeType() string {
	switch f {
	case FormatEPUB:
		return "application/epub+zip"
	case FormatPDF:
		return "application/pdf"
	case FormatMOBI:
		return "application/x-mobipocket-ebook"
	case FormatAZW3:
		return "application/vnd.amazon.ebook"
	case FormatAudiobook:
		return "audio/mpeg"
	default:
		return "application/octet-stream"
	}
}
