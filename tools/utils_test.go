package tools

import (
	"testing"

	"go.viam.com/test"
)

func TestIsFloatEqual(t *testing.T) {
	test.That(t, IsFloatEqual(1.0, 1.0), test.ShouldBeTrue)
	test.That(t, IsFloatEqual(1.0, 1.0+FloatMin/2), test.ShouldBeTrue)
	test.That(t, IsFloatEqual(1.0, 1.0+FloatMin*2), test.ShouldBeFalse)
	test.That(t, IsFloatEqual(-3.5, 3.5), test.ShouldBeFalse)
}

func TestFmtJSONString(t *testing.T) {
	test.That(t, FmtJSONString(map[string]int{"trees": 3}), test.ShouldEqual, `{"trees":3}`)
}
