package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	service "github.com/okian/roster/internal/app"
	"github.com/okian/roster/internal/adapters/repository"
	"github.com/okian/roster/internal/domain/model"
	"github.com/okian/roster/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should have sensible defaults", func() {
			So(svc, ShouldNotBeNil)
			So(svc.GetStats()["started"], ShouldEqual, false)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithLogger(logger.Named("test")),
			service.WithSeed(),
			service.WithClock(time.Now),
			service.WithImportMaxRows(10),
		)

		Convey("Then it should be created successfully", func() {
			So(svc, ShouldNotBeNil)
		})
	})
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New()
		ctx := context.Background()
		defer svc.Stop()

		Convey("When calling operations before Start", func() {
			_, err := svc.ListStudents(ctx)

			Convey("Then they report the service is not started", func() {
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			})
		})

		Convey("When starting the service", func() {
			err := svc.Start(ctx)

			Convey("Then it should start with the two seed records", func() {
				So(err, ShouldBeNil)
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
				So(stats["totalStudents"], ShouldEqual, 2)
				So(stats["lastID"], ShouldEqual, 2)
			})

			Convey("And starting again is a no-op", func() {
				_, _ = svc.CreateStudent(ctx, model.NewStudent{Name: "Alice", Year: "1st Year", Section: "A"})
				So(svc.Start(ctx), ShouldBeNil)
				So(svc.GetStats()["totalStudents"], ShouldEqual, 3)
				So(svc.GetStats()["lastID"], ShouldEqual, 3)
			})
		})

		Convey("When stopping the service twice", func() {
			So(svc.Start(ctx), ShouldBeNil)
			svc.Stop()
			svc.Stop()

			Convey("Then it should be marked as stopped", func() {
				So(svc.GetStats()["started"], ShouldEqual, false)
				_, err := svc.GetStudent(ctx, 1)
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			})
		})
	})
}

func TestService_Students(t *testing.T) {
	Convey("Given a started service", t, func() {
		now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
		svc := service.New(service.WithClock(func() time.Time { return now }))
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When creating Alice", func() {
			rec, err := svc.CreateStudent(ctx, model.NewStudent{Name: "Alice", Year: "1st Year", Section: "A"})

			Convey("Then she gets id 3 and the list grows to 3", func() {
				So(err, ShouldBeNil)
				So(rec.ID, ShouldEqual, 3)
				So(rec.CreatedAt.Equal(now), ShouldBeTrue)

				list, err := svc.ListStudents(ctx)
				So(err, ShouldBeNil)
				So(list, ShouldHaveLength, 3)
				So(list[2], ShouldResemble, rec)
			})
		})

		Convey("When creating a record with an empty name", func() {
			_, err := svc.CreateStudent(ctx, model.NewStudent{Name: "", Year: "1st Year", Section: "A"})

			Convey("Then it fails validation and the store keeps 2 records", func() {
				So(errors.Is(err, repository.ErrValidation), ShouldBeTrue)
				list, _ := svc.ListStudents(ctx)
				So(list, ShouldHaveLength, 2)
			})
		})

		Convey("When getting a seeded record", func() {
			rec, err := svc.GetStudent(ctx, 2)

			Convey("Then it is returned exactly", func() {
				So(err, ShouldBeNil)
				So(rec.Name, ShouldEqual, "Maria Santos")
				So(rec.Year, ShouldEqual, "2nd Year")
				So(rec.Section, ShouldEqual, "B")
			})
		})

		Convey("When getting an unknown id", func() {
			_, err := svc.GetStudent(ctx, 99)

			Convey("Then it reports not found", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})
	})
}

func TestService_CustomStoreAndSeed(t *testing.T) {
	Convey("Given a service without seed records", t, func() {
		svc := service.New(service.WithSeed())
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("Then it starts empty and the first id is 1", func() {
			So(svc.GetStats()["totalStudents"], ShouldEqual, 0)
			So(svc.GetStats()["lastID"], ShouldEqual, 0)
			rec, err := svc.CreateStudent(ctx, model.NewStudent{Name: "Alice", Year: "1st Year", Section: "A"})
			So(err, ShouldBeNil)
			So(rec.ID, ShouldEqual, 1)
		})
	})

	Convey("Given a service with an injected store", t, func() {
		ctx := context.Background()
		store, err := repository.NewMemStore(ctx, repository.WithSeed(model.NewStudent{Name: "Only", Year: "4th Year", Section: "Z"}))
		So(err, ShouldBeNil)
		svc := service.New(service.WithStore(store))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("Then the service uses it as-is", func() {
			list, err := svc.ListStudents(ctx)
			So(err, ShouldBeNil)
			So(list, ShouldHaveLength, 1)
			So(list[0].Name, ShouldEqual, "Only")
		})
	})
}
