package port

import "context"

// Uploader сохраняет результат во внешнем хранилище и возвращает публичную ссылку.
type Uploader interface {
	Upload(ctx context.Context, data []byte, folder, filename, contentType string) (string, error)
}

// Geocoder определяет адрес по координатам.
type Geocoder interface {
	// ReverseGeocode возвращает пустую строку, если адрес не найден.
	ReverseGeocode(ctx context.Context, lat, lon float64) (string, error)
}
