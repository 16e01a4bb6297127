package domain

import (
	"time"
)

// SysConfig is one dynamic runtime setting row, grouped by type
// (category) and name. Static process settings live in the YAML config;
// anything an operator may change at runtime lives here.
type SysConfig struct {
	ID        int64     `json:"id,string" form:"id"`
	Sort      int       `json:"sort"  form:"sort"`
	Type      string    `gorm:"index" json:"type" form:"type"`
	Name      string    `gorm:"index" json:"name" form:"name"`
	Value     string    `json:"value" form:"value"`
	Remark    string    `json:"remark" form:"remark"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (SysConfig) TableName() string {
	return "sys_config"
}

// SysOprLog records one admin mutation (entity create/update/delete,
// import, settings change). Rows are written by the event subscriber
// and trimmed by the daily retention job.
type SysOprLog struct {
	ID        int64     `json:"id,string"`
	StoreID   int64     `gorm:"index" json:"store_id,string"`
	OprIP     string    `json:"opr_ip"`
	OptAction string    `json:"opt_action"`
	OptDesc   string    `json:"opt_desc"`
	OptTime   time.Time `gorm:"index" json:"opt_time"`
}

// TableName Specify table name
func (SysOprLog) TableName() string {
	return "sys_opr_log"
}
