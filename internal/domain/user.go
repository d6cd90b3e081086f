package domain

// Пользователь из внешнего каталога (auth и регистрация - не наша зона)
type User struct {
	ID                 int64  `json:"id"`
	Username           string `json:"username"`
	ProfilePicturePath string `json:"profile_picture_path,omitempty"`
	ProfilePictureMime string `json:"profile_picture_mime,omitempty"`
}

// Персонаж из каталога, среди которых игроки угадывают
type Character struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
