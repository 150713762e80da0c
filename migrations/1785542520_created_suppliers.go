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

		collection := core.NewBaseCollection("suppliers")

		collection.Fields.Add(
			&core.TextField{
				Name:     "name",
				Required: true,
				Max:      200,
			},
			&core.TextField{
				Name: "contact_name",
				Max:  200,
			},
			&core.EmailField{
				Name: "email",
			},
			&core.TextField{
				Name: "phone",
				Max:  30,
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

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("suppliers")
		if err != nil {
			return err
		}

		return app.Delete(collection)
	})
}
