package attribute_test

import (
	"testing"

	"github.com/okian/scout/internal/domain/attribute"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSchema(t *testing.T) {
	Convey("Given the attribute schema", t, func() {
		Convey("Then the default set is the six face stats in card order", func() {
			So(attribute.Default(), ShouldResemble, []string{"pace", "shooting", "passing", "dribbling", "defending", "physical"})
		})

		Convey("Then every default attribute is known", func() {
			for _, name := range attribute.Default() {
				So(attribute.Known(name), ShouldBeTrue)
			}
		})

		Convey("Then sub-stats and profile fields are known", func() {
			So(attribute.Known("sprint_speed"), ShouldBeTrue)
			So(attribute.Known("dribbling_stat"), ShouldBeTrue)
			So(attribute.Known("weak_foot"), ShouldBeTrue)
		})

		Convey("Then descriptive and unknown names are rejected", func() {
			So(attribute.Known("name"), ShouldBeFalse)
			So(attribute.Known("club_id"), ShouldBeFalse)
			So(attribute.Known("nonexistent_stat"), ShouldBeFalse)
			So(attribute.Known("Pace"), ShouldBeFalse)
		})

		Convey("Then All returns a copy", func() {
			names := attribute.All()
			So(len(names), ShouldEqual, 39)
			names[0] = "mutated"
			So(attribute.All()[0], ShouldEqual, "pace")
		})
	})
}

func TestParse(t *testing.T) {
	Convey("Given comma-separated attribute lists", t, func() {
		Convey("When the list is empty or blank", func() {
			So(attribute.Parse(""), ShouldBeNil)
			So(attribute.Parse("   "), ShouldBeNil)
		})

		Convey("When the list has spacing, case and empty fragments", func() {
			So(attribute.Parse(" Pace, shooting,,PASSING "), ShouldResemble, []string{"pace", "shooting", "passing"})
		})

		Convey("When the list repeats a name", func() {
			So(attribute.Parse("pace,pace"), ShouldResemble, []string{"pace", "pace"})
		})

		Convey("When the list has unknown names they are kept for validation", func() {
			So(attribute.Parse("pace,bogus"), ShouldResemble, []string{"pace", "bogus"})
		})
	})
}

func TestHeaderMapper(t *testing.T) {
	Convey("Given a header mapper for one header row", t, func() {
		m := &attribute.HeaderMapper{}

		Convey("Then dataset labels resolve to attribute names", func() {
			name, ok := m.Resolve("Sprint Speed")
			So(ok, ShouldBeTrue)
			So(name, ShouldEqual, "sprint_speed")

			name, ok = m.Resolve(" FK Acc. ")
			So(ok, ShouldBeTrue)
			So(name, ShouldEqual, "fk_acc")

			name, ok = m.Resolve("Def. Aware")
			So(ok, ShouldBeTrue)
			So(name, ShouldEqual, "def_aware")
		})

		Convey("Then the first Dribbling is the face stat and the second the sub-stat", func() {
			first, ok := m.Resolve("Dribbling")
			So(ok, ShouldBeTrue)
			So(first, ShouldEqual, "dribbling")

			second, ok := m.Resolve("Dribbling")
			So(ok, ShouldBeTrue)
			So(second, ShouldEqual, "dribbling_stat")
		})

		Convey("Then snake-case schema names are accepted", func() {
			name, ok := m.Resolve("ball_control")
			So(ok, ShouldBeTrue)
			So(name, ShouldEqual, "ball_control")
		})

		Convey("Then descriptive columns do not resolve", func() {
			_, ok := m.Resolve("Club")
			So(ok, ShouldBeFalse)
		})
	})

	Convey("Given attribute names", t, func() {
		Convey("Then labels round-trip through a fresh mapper", func() {
			for _, name := range attribute.All() {
				if name == "dribbling_stat" {
					continue
				}
				m := &attribute.HeaderMapper{}
				got, ok := m.Resolve(attribute.Label(name))
				So(ok, ShouldBeTrue)
				So(got, ShouldEqual, name)
			}
		})
	})
}
