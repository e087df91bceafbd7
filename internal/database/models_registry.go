package database

import "forum/internal/models"

// PersistentModels returns the schema-managed GORM models in dependency order.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Community{},
		&models.Post{},
		&models.Comment{},
		&models.PostLike{},
		&models.CommentLike{},
	}
}
