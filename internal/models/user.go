package models

// CustomerProfile — вложенный контактный под-профиль пользователя
// (адрес доставки, телефон и пр.). Поля повторяют контракт бэкенда.
type CustomerProfile struct {
	PhoneNumber     string `json:"phone_number,omitempty"`
	StreetAddress   string `json:"street_address,omitempty"`
	City            string `json:"city,omitempty"`
	State           string `json:"state,omitempty"`
	ZipCode         string `json:"zip_code,omitempty"`
	Country         string `json:"country,omitempty"`
	DateOfBirth     string `json:"date_of_birth,omitempty"`
	NewsletterOptIn bool   `json:"is_subscribed_to_newsletter,omitempty"`
}

// UserProfile — профиль пользователя в объёме, который видит сессия.
//
// Профиль производный, а не авторитетный: он загружается с бэкенда по валидному
// access-токену и кэшируется рядом с парой токенов, чтобы после перезапуска
// можно было показать личность до завершения сетевого запроса. До повторной
// загрузки кэшированное значение считается потенциально устаревшим.
type UserProfile struct {
	ID        int64           `json:"id"`
	Username  string          `json:"username"`
	Email     string          `json:"email"`
	FirstName string          `json:"first_name,omitempty"`
	LastName  string          `json:"last_name,omitempty"`
	Customer  CustomerProfile `json:"customer_profile"`
}
