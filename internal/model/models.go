package model

// All lists every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Post{},
		&Product{},
		&Comment{},
		&Like{},
		&Follow{},
		&Favorite{},
		&Message{},
		&Banner{},
		&Announcement{},
		&Notification{},
	}
}
