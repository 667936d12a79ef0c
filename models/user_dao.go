package models

import (
	"gorm.io/gorm"
)

// UserDAO 封装 User 相关的数据库操作
type UserDAO struct {
	db *gorm.DB
}

func NewUserDAO(db *gorm.DB) *UserDAO {
	return &UserDAO{db: db}
}

func (dao *UserDAO) Create(user *User) error {
	return dao.db.Create(user).Error
}

func (dao *UserDAO) FindByID(id string) (*User, error) {
	var u User
	if err := dao.db.Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// ExistsByID 账号是否已被占用
func (dao *UserDAO) ExistsByID(id string) (bool, error) {
	var count int64
	err := dao.db.Model(&User{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// ListAll 按创建时间排序返回全部用户
func (dao *UserDAO) ListAll() ([]User, error) {
	var users []User
	err := dao.db.Order("created_at asc").Find(&users).Error
	return users, err
}

// UpdateFields 按主键更新部分字段
func (dao *UserDAO) UpdateFields(id string, fields map[string]any) error {
	return dao.db.Model(&User{}).Where("id = ?", id).Updates(fields).Error
}

func (dao *UserDAO) Delete(id string) error {
	return dao.db.Where("id = ?", id).Delete(&User{}).Error
}
