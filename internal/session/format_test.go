package session

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatAddress(t *testing.T) {
	t.Run("shortens a full address", func(t *testing.T) {
		result := FormatAddress("0x742d35cc6634c0532925a3b844bc9e7595f0beb1")
		assert.Equal(t, "0x742d...beb1", result)
	})

	t.Run("result is always 13 characters for long input", func(t *testing.T) {
		inputs := []string{
			"0x742d35cc6634c0532925a3b844bc9e7595f0beb1",
			"0123456789",
			"abcdefghijklmnop",
		}
		for _, in := range inputs {
			result := FormatAddress(in)
			assert.Len(t, result, 13, "input %q", in)
			assert.Equal(t, in[:6], result[:6])
			assert.Equal(t, "...", result[6:9])
			assert.Equal(t, in[len(in)-4:], result[9:])
		}
	})

	t.Run("inputs under ten characters pass through unchanged", func(t *testing.T) {
		for _, in := range []string{"", "0x", "0xabc", "123456789"} {
			assert.Equal(t, in, FormatAddress(in), "input %q", in)
		}
	})
}

func TestFormatBalance(t *testing.T) {
	t.Run("four decimal places", func(t *testing.T) {
		assert.Equal(t, "1.0000", FormatBalance("1"))
		assert.Equal(t, "0.5000", FormatBalance("0.5"))
		assert.Equal(t, "1234.5679", FormatBalance("1234.56789"))
	})

	t.Run("values below threshold collapse to zero", func(t *testing.T) {
		assert.Equal(t, "0", FormatBalance("0"))
		assert.Equal(t, "0", FormatBalance("0.00009999"))
		assert.Equal(t, "0", FormatBalance("0.000000000001"))
	})

	t.Run("threshold boundary", func(t *testing.T) {
		assert.Equal(t, "0.0001", FormatBalance("0.0001"))
		assert.Equal(t, "0", FormatBalance("0.000099"))
	})

	t.Run("unparseable input renders as zero", func(t *testing.T) {
		assert.Equal(t, "0", FormatBalance(""))
		assert.Equal(t, "0", FormatBalance("not a number"))
	})
}

func TestWeiToEther(t *testing.T) {
	t.Run("one ether", func(t *testing.T) {
		wei, _ := new(big.Int).SetString("1000000000000000000", 10)
		assert.Equal(t, "1.000000", weiToEther(wei))
	})

	t.Run("fractional ether", func(t *testing.T) {
		wei, _ := new(big.Int).SetString("500000000000000000", 10)
		assert.Equal(t, "0.500000", weiToEther(wei))
	})

	t.Run("nil is zero", func(t *testing.T) {
		assert.Equal(t, "0", weiToEther(nil))
	})

	t.Run("round trips through FormatBalance", func(t *testing.T) {
		wei, _ := new(big.Int).SetString("2340000000000000000", 10)
		formatted := FormatBalance(weiToEther(wei))
		assert.Equal(t, "2.3400", formatted)
	})
}

func ExampleFormatAddress() {
	fmt.Println(FormatAddress("0x742d35cc6634c0532925a3b844bc9e7595f0beb1"))
	// Output: 0x742d...beb1
}
