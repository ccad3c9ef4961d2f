package skemagen

// twoCharNames is how many names the supply yields before growing past two
// characters. Schema assembly never draws more fields than this, which keeps
// every declared name shorter than the three-character corruption keys.
const twoCharNames = 26 + 26*26

// attrNames returns a fresh supply of distinct field names: "a".."z", then
// "aa".."zz", then longer strings, in a fixed order. Each record draw starts
// a new supply, so names only depend on field position.
func attrNames() func() string {
	n := 0
	return func() string {
		n++
		i := n
		var buf [8]byte
		w := len(buf)
		for i > 0 {
			i--
			w--
			buf[w] = byte('a' + i%26)
			i /= 26
		}
		return string(buf[w:])
	}
}
