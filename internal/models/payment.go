package models

// PaymentCard — сохранённая платёжная карта пользователя.
// Баланс уменьшается при расчёте платежа и никогда не увеличивается
// этой подсистемой (кроме компенсации несостоявшегося расчёта).
type PaymentCard struct {
	ID          string  `json:"id"`
	UserID      string  `json:"userId"`
	Name        string  `json:"name"`
	Number      string  `json:"number"`
	ExpiryMonth string  `json:"expiryMonth"`
	ExpiryYear  string  `json:"expiryYear"`
	CVC         string  `json:"cvc"`
	Balance     float64 `json:"balance"` // в USD
}

// MaskedCard — карта в выдаче API: от номера остаются последние 4 цифры.
type MaskedCard struct {
	ID          string  `json:"id"`
	UserID      string  `json:"userId"`
	Name        string  `json:"name"`
	EndsWith    string  `json:"endsWith"`
	ExpiryMonth string  `json:"expiryMonth"`
	ExpiryYear  string  `json:"expiryYear"`
	Balance     float64 `json:"balance"`
}

// Masked возвращает представление карты для выдачи наружу.
func (c *PaymentCard) Masked() MaskedCard {
	number := c.Number
	if len(number) > 4 {
		number = number[len(number)-4:]
	}
	return MaskedCard{
		ID:          c.ID,
		UserID:      c.UserID,
		Name:        c.Name,
		EndsWith:    number,
		ExpiryMonth: c.ExpiryMonth,
		ExpiryYear:  c.ExpiryYear,
		Balance:     c.Balance,
	}
}

// CartItem — позиция корзины платежа. Не сохраняется в хранилище.
type CartItem struct {
	Name     string
	Category GrantKind
	Price    float64 // в USD, не используется для категории cubes
	Amount   int     // количество единиц, > 0
}

// DummyCartItem принимает позицию корзины из JSON-запроса до конвертации
// в CartItem: категория приходит строкой и парсится отдельно.
type DummyCartItem struct {
	Name     string  `json:"name" validate:"required"`
	Category string  `json:"category" validate:"required"`
	Price    float64 `json:"price" validate:"required,gt=0"`
	Amount   int     `json:"amount" validate:"required,gt=0"`
}
