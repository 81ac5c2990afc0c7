package gravatar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashNormalizesEmail(t *testing.T) {
	// md5("myemailaddress@example.com"), the reference value from the Gravatar docs
	want := "0bc83cb571cd1c50ba6f3e8a78ef1346"

	assert.Equal(t, want, Hash("MyEmailAddress@example.com "))
	assert.Equal(t, want, Hash("  myemailaddress@example.com"))
}

func TestURLDefaults(t *testing.T) {
	got := URL("MyEmailAddress@example.com", DefaultOptions)
	assert.Equal(t,
		"https://www.gravatar.com/avatar/0bc83cb571cd1c50ba6f3e8a78ef1346?s=200&d=identicon&r=g",
		got)

	assert.Equal(t, got, URL("myemailaddress@example.com", Options{}))
}

func TestURLCustomOptions(t *testing.T) {
	got := URL("a@b.c", Options{Size: 80, Default: "https://x.example/img.png", Rating: "pg"})
	assert.Contains(t, got, "s=80")
	assert.Contains(t, got, "d=https%3A%2F%2Fx.example%2Fimg.png")
	assert.Contains(t, got, "r=pg")
}
