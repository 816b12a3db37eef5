package utils

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/skip2/go-qrcode"
)

// GenerateShopLink возвращает ссылку на бота магазина.
func GenerateShopLink(botUsername string) (string, error) {
	if botUsername == "" {
		return "", fmt.Errorf("имя пользователя бота не настроено")
	}
	return fmt.Sprintf("https://t.me/%s", botUsername), nil
}

// GenerateShopQRCode генерирует PNG с QR-кодом ссылки на магазин.
func GenerateShopQRCode(botUsername string, size int) ([]byte, error) {
	link, err := GenerateShopLink(botUsername)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		size = 256
	}

	qrBytes, err := qrcode.Encode(link, qrcode.Medium, size)
	if err != nil {
		log.Printf("GenerateShopQRCode: ошибка кодирования QR-кода для ссылки '%s': %v", link, err)
		return nil, err
	}
	return qrBytes, nil
}
