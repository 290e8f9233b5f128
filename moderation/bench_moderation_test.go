package moderation

import (
	"fmt"
	"log/slog"
	"testing"

	"github.com/mama165/sdk-go/logs"
)

func BenchmarkModerator_Censor(b *testing.B) {
	words := make([]string, 0, 10_000)
	for i := 0; i < 10_000; i++ {
		words = append(words, fmt.Sprintf("word%dx", i))
	}
	mod, err := NewModerator(words, '*', logs.GetLoggerFromLevel(slog.LevelError))
	if err != nil {
		b.Fatal(err)
	}
	text := "Olá pessoal, word42x and w.o.r.d.7.x are both banned but hello is fine"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = mod.Censor(text)
	}
}
