package model

import "time"

// 商品・従業員に対する管理操作
type AuditAction string

const (
	AuditActionCreateProduct  AuditAction = "CREATE_PRODUCT"
	AuditActionUpdateProduct  AuditAction = "UPDATE_PRODUCT"
	AuditActionDeleteProduct  AuditAction = "DELETE_PRODUCT"
	AuditActionCreateEmployee AuditAction = "CREATE_EMPLOYEE"
	AuditActionUpdateEmployee AuditAction = "UPDATE_EMPLOYEE"
	AuditActionToggleEmployee AuditAction = "TOGGLE_EMPLOYEE"
	AuditActionDeleteEmployee AuditAction = "DELETE_EMPLOYEE"
)

// 何に対する操作か
type AuditResourceType string

const (
	AuditResourceProduct AuditResourceType = "product"
	AuditResourceUser    AuditResourceType = "user"
)

// 監査ログ（管理者操作ログ）。
// 「誰が」「何を」「どの対象に」「どう変えたか」を残す。
// 在庫移動と販売は台帳そのものが記録なので書かない。
type AuditLog struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//操作した管理者のID。
	ActorUserID string `gorm:"type:varchar(36);not null;index" json:"actor_user_id"`

	Action AuditAction `gorm:"type:varchar(50);not null;index" json:"action"`

	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resource_type"`

	ResourceID string `gorm:"type:varchar(36);not null;index" json:"resource_id"`

	//JSON文字列で保存する。
	BeforeJSON string `gorm:"type:text" json:"before_json"`
	AfterJSON  string `gorm:"type:text" json:"after_json"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
