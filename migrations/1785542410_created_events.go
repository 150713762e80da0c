package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		users, err := app.FindCollectionByNameOrId("users")
		if err != nil {
			return err
		}

		collection := core.NewBaseCollection("events")

		collection.Fields.Add(
			&core.TextField{
				Name:     "title",
				Required: true,
				Max:      200,
			},
			&core.TextField{
				Name: "description",
				Max:  2000,
			},
			&core.TextField{
				Name: "location",
				Max:  300,
			},
			&core.DateField{
				Name:     "start_date",
				Required: true,
			},
			&core.DateField{
				Name:     "end_date",
				Required: true,
			},
			&core.SelectField{
				Name:      "category",
				Required:  true,
				MaxSelect: 1,
				Values: []string{
					"social",
					"academico",
					"cultural",
					"comercial",
					"taller",
					"otro",
				},
			},
			&core.SelectField{
				Name:      "status",
				Required:  true,
				MaxSelect: 1,
				Values: []string{
					"proximo",
					"en_curso",
					"finalizado",
					"cancelado",
				},
			},
			&core.NumberField{
				Name:    "max_attendees",
				OnlyInt: true,
			},
			&core.NumberField{
				Name:    "current_attendees",
				OnlyInt: true,
			},
			&core.RelationField{
				Name:         "created_by",
				Required:     true,
				CollectionId: users.Id,
				MaxSelect:    1,
			},
			&core.AutodateField{
				Name:     "created",
				OnCreate: true,
			},
			&core.AutodateField{
				Name:     "updated",
				OnCreate: true,
				OnUpdate: true,
			},
		)

		collection.AddIndex("idx_events_start_date", false, "start_date", "")
		collection.AddIndex("idx_events_status", false, "status", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("events")
		if err != nil {
			return err
		}

		return app.Delete(collection)
	})
}
