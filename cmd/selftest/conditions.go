package main

import (
	"math"

	"digital.vasic.verify/pkg/verify"
)

type testData struct {
	intSeven          int
	strHello          string
	floatNinePointOne float32
	doublePi          float64
}

func newTestData() testData {
	return testData{
		intSeven:          7,
		strHello:          "hello",
		floatNinePointOne: 9.1,
		doublePi:          3.1415926535,
	}
}

// Failing tests use Check so every comparison is reported.

var _ = verify.TestCase("succeeding/conditions/equality",
	"Equality checks that should succeed",
	func(t *verify.T) {
		data := newTestData()

		t.Require(verify.That(data.intSeven).Eq(7))
		t.Require(verify.That(data.floatNinePointOne).Eq(verify.Approx(float32(9.1))))
		t.Require(verify.That(data.doublePi).Eq(verify.Approx(3.1415926535)))
		t.Require(verify.That(data.strHello).Eq("hello"))
		t.Require(verify.That(len(data.strHello)).Eq(5))

		x := 1.1 + 0.1
		x += 0.1
		t.Require(verify.That(x).Eq(verify.Approx(1.3)))
	})

var _ = verify.TestCase("failing/conditions/equality",
	"Equality checks that should fail",
	func(t *verify.T) {
		data := newTestData()

		t.Check(verify.That(data.intSeven).Eq(6))
		t.Check(verify.That(data.intSeven).Eq(8))
		t.Check(verify.That(data.intSeven).Eq(0))
		t.Check(verify.That(data.floatNinePointOne).Eq(verify.Approx(float32(9.11))))
		t.Check(verify.That(data.floatNinePointOne).Eq(verify.Approx(float32(9.0))))
		t.Check(verify.That(data.floatNinePointOne).Eq(verify.Approx(1)))
		t.Check(verify.That(data.floatNinePointOne).Eq(verify.Approx(0)))
		t.Check(verify.That(data.doublePi).Eq(verify.Approx(3.1415)))
		t.Check(verify.That(data.strHello).Eq("goodbye"))
		t.Check(verify.That(data.strHello).Eq("hell"))
		t.Check(verify.That(data.strHello).Eq("hello1"))
		t.Check(verify.That(len(data.strHello)).Eq(6))

		x := 1.1 + 0.1
		x += 0.1
		t.Check(verify.That(x).Eq(verify.Approx(1.301)))
	})

var _ = verify.TestCase("succeeding/conditions/inequality",
	"Inequality checks that should succeed",
	func(t *verify.T) {
		data := newTestData()

		t.Require(verify.That(data.intSeven).Ne(6))
		t.Require(verify.That(data.intSeven).Ne(8))
		t.Require(verify.That(data.floatNinePointOne).Ne(verify.Approx(float32(9.11))))
		t.Require(verify.That(data.floatNinePointOne).Ne(verify.Approx(float32(9.0))))
		t.Require(verify.That(data.floatNinePointOne).Ne(verify.Approx(1)))
		t.Require(verify.That(data.floatNinePointOne).Ne(verify.Approx(0)))
		t.Require(verify.That(data.doublePi).Ne(verify.Approx(3.1415)))
		t.Require(verify.That(data.strHello).Ne("goodbye"))
		t.Require(verify.That(data.strHello).Ne("hell"))
		t.Require(verify.That(data.strHello).Ne("hello1"))
		t.Require(verify.That(len(data.strHello)).Ne(6))
	})

var _ = verify.TestCase("failing/conditions/inequality",
	"Inequality checks that should fail",
	func(t *verify.T) {
		data := newTestData()

		t.Check(verify.That(data.intSeven).Ne(7))
		t.Check(verify.That(data.floatNinePointOne).Ne(verify.Approx(float32(9.1))))
		t.Check(verify.That(data.doublePi).Ne(verify.Approx(3.1415926535)))
		t.Check(verify.That(data.strHello).Ne("hello"))
		t.Check(verify.That(len(data.strHello)).Ne(5))
	})

var _ = verify.TestCase("succeeding/conditions/ordered",
	"Ordering comparison checks that should succeed",
	func(t *verify.T) {
		data := newTestData()

		t.Require(verify.That(data.intSeven).Lt(8))
		t.Require(verify.That(data.intSeven).Gt(6))
		t.Require(verify.That(data.intSeven).Gt(0))
		t.Require(verify.That(data.intSeven).Gt(-1))

		t.Require(verify.That(data.intSeven).Ge(7))
		t.Require(verify.That(data.intSeven).Ge(6))
		t.Require(verify.That(data.intSeven).Le(7))
		t.Require(verify.That(data.intSeven).Le(8))

		t.Require(verify.That(data.floatNinePointOne).Gt(9))
		t.Require(verify.That(data.floatNinePointOne).Lt(10))
		t.Require(verify.That(data.floatNinePointOne).Lt(9.2))

		t.Require(verify.That(data.strHello).Le("hello"))
		t.Require(verify.That(data.strHello).Ge("hello"))

		t.Require(verify.That(data.strHello).Lt("hellp"))
		t.Require(verify.That(data.strHello).Lt("zebra"))
		t.Require(verify.That(data.strHello).Gt("hellm"))
		t.Require(verify.That(data.strHello).Gt("a"))
	})

var _ = verify.TestCase("failing/conditions/ordered",
	"Ordering comparison checks that should fail",
	func(t *verify.T) {
		data := newTestData()

		t.Check(verify.That(data.intSeven).Gt(7))
		t.Check(verify.That(data.intSeven).Lt(7))
		t.Check(verify.That(data.intSeven).Gt(8))
		t.Check(verify.That(data.intSeven).Lt(6))
		t.Check(verify.That(data.intSeven).Lt(0))
		t.Check(verify.That(data.intSeven).Lt(-1))

		t.Check(verify.That(data.intSeven).Ge(8))
		t.Check(verify.That(data.intSeven).Le(6))

		t.Check(verify.That(data.floatNinePointOne).Lt(9))
		t.Check(verify.That(data.floatNinePointOne).Gt(10))
		t.Check(verify.That(data.floatNinePointOne).Gt(9.2))

		t.Check(verify.That(data.strHello).Gt("hello"))
		t.Check(verify.That(data.strHello).Lt("hello"))
		t.Check(verify.That(data.strHello).Gt("hellp"))
		t.Check(verify.That(data.strHello).Gt("z"))
		t.Check(verify.That(data.strHello).Lt("hellm"))
		t.Check(verify.That(data.strHello).Lt("a"))

		t.Check(verify.That(data.strHello).Ge("z"))
		t.Check(verify.That(data.strHello).Le("a"))
	})

var _ = verify.TestCase("succeeding/conditions/int literals",
	"Comparisons with int literals across signedness and width",
	func(t *verify.T) {
		i := 1
		ui := uint(2)
		l := int64(3)
		ul := uint64(4)
		c := int8(5)
		uc := uint8(6)

		t.Require(verify.That(i).Eq(1))
		t.Require(verify.That(ui).Eq(2))
		t.Require(verify.That(l).Eq(3))
		t.Require(verify.That(ul).Eq(4))
		t.Require(verify.That(c).Eq(5))
		t.Require(verify.That(uc).Eq(6))

		t.Require(verify.That(1).Eq(i))
		t.Require(verify.That(2).Eq(ui))
		t.Require(verify.That(3).Eq(l))
		t.Require(verify.That(4).Eq(ul))
		t.Require(verify.That(5).Eq(c))
		t.Require(verify.That(6).Eq(uc))

		t.Require(verify.That(uint64(math.MaxUint64)).Gt(ul))
	})

var _ = verify.TestCase("succeeding/conditions/negative ints",
	"Negative signed ints order below every unsigned int",
	func(t *verify.T) {
		t.Check(verify.That(-1).Lt(uint(2)))
		t.Check(verify.That(uint(2)).Gt(-1))

		t.Check(verify.That(math.MinInt64).Lt(uint64(2)))
		t.Check(verify.That(int64(-1)).Ne(uint64(math.MaxUint64)))
	})

type pointee struct{ value int }

var _ = verify.TestCase("succeeding/conditions/ptr",
	"Pointers can be compared to nil",
	func(t *verify.T) {
		var p *pointee
		var pNil *pointee

		t.Require(verify.That(p).Eq(nil))
		t.Require(verify.That(p).Eq(pNil))

		data := pointee{value: 1}
		p = &data
		t.Require(verify.That(p).Ne(nil))
		t.Require(verify.That(nil).Ne(p))
	})

var _ = verify.TestCase("succeeding/conditions/not",
	"'Not' checks that should succeed",
	func(t *verify.T) {
		falseValue := false

		t.Require(!false)
		t.RequireFalse(false)

		t.Require(!falseValue)
		t.RequireFalse(falseValue)

		t.Require(!(1 == 2))
		t.RequireFalse(verify.That(1).Eq(2))
	})

var _ = verify.TestCase("failing/conditions/not",
	"'Not' checks that should fail",
	func(t *verify.T) {
		trueValue := true

		t.Check(!true)
		t.CheckFalse(true)

		t.Check(!trueValue)
		t.CheckFalse(trueValue)

		t.Check(!(1 == 1))
		t.CheckFalse(verify.That(1).Eq(1))
	})
