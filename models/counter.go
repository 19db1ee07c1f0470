// models/counter.go
package models

import "time"

const GlobalCounterName = "global"

// GlobalCounter backs the shared click counter when Redis is not configured.
type GlobalCounter struct {
	Name      string    `gorm:"primaryKey;type:varchar(64)" json:"name"`
	Value     int64     `gorm:"not null;default:0" json:"value"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
