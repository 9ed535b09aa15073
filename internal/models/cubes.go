package models

// CubeBalance хранит целочисленный баланс кубов пользователя.
// Одна запись на пользователя, создаётся при регистрации.
// Изменяется только через операцию Adjust леджера кубов.
type CubeBalance struct {
	UserID string `json:"userId"`
	Count  int    `json:"count"`
}

// RegistrationCubeGrant — количество кубов, зачисляемое при регистрации.
const RegistrationCubeGrant = 100

// AdvertisedCubeGrant — количество кубов, которое сообщается в токене,
// выпущенном сразу после регистрации.
// TODO: свести с RegistrationCubeGrant — значения расходятся
// (100 в хранилище против 30 в токене), нужно решение продукта.
const AdvertisedCubeGrant = 30
