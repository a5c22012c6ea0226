package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// ImageFile describes one stored upload.
type ImageFile struct {
	Filename   string `json:"filename"`
	URL        string `json:"url"`
	PreviewURL string `json:"preview_url"`
	Size       int64  `json:"size"`
	Mimetype   string `json:"mimetype"`
}

// ImageList is persisted as a JSON array column.
type ImageList []ImageFile

func (l ImageList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *ImageList) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*l = ImageList{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("unsupported type for ImageList")
	}

	if len(raw) == 0 {
		*l = ImageList{}
		return nil
	}
	return json.Unmarshal(raw, l)
}

func (ImageList) GormDataType() string {
	return "json"
}

func (ImageList) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "jsonb"
	}
	return "text"
}
