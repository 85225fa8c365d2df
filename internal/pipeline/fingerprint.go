// Package pipeline — fingerprint.go вычисляет отпечаток исходного сообщения.
// Отпечаток — стабильный ключ идемпотентности: повторная доставка того же
// сообщения даёт тот же отпечаток и не применяется второй раз.
package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Fingerprint строит отпечаток по идентичности сообщения.
// Основной вариант — пара (чат, ID сообщения); если транспорт не дал
// ID сообщения, откатываемся на хеш содержимого.
func Fingerprint(m RawMessage) string {
	if m.MessageID > 0 {
		return hash(fmt.Sprintf("msg|%d|%d", m.ChatID, m.MessageID))
	}
	return hash(fmt.Sprintf("content|%d|%d|%s", m.ChatID, m.SenderID, m.Text))
}

// AdminFingerprint строит отпечаток для неигровых операций (админка, магазин),
// чтобы они шли через тот же сторож идемпотентности, что и игровые события.
func AdminFingerprint(kind string, chatID int64, messageID int) string {
	return hash(fmt.Sprintf("%s|%d|%d", kind, chatID, messageID))
}

func hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
