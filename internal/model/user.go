package model

// User 对应于数据库中的 'users' 表。
type User struct {
	ID uint `gorm:"primaryKey" json:"id"`
	// Username 是登录名，库内唯一。
	Username string `gorm:"type:varchar(100);not null;uniqueIndex" json:"username"`
	// Password 存储 bcrypt 哈希后的密码，永不外泄。
	Password string `gorm:"type:varchar(255);not null" json:"-"`
	// Role 为 ADMIN 或 USER，管理端接口要求 ADMIN。
	Role      string    `gorm:"type:varchar(20);not null;default:USER" json:"role"`
	CreatedAt LocalTime `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (User) TableName() string {
	return "users"
}
