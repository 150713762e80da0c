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

		suppliers, err := app.FindCollectionByNameOrId("suppliers")
		if err != nil {
			return err
		}

		collection := core.NewBaseCollection("products")

		collection.Fields.Add(
			&core.TextField{
				Name:     "name",
				Required: true,
				Max:      200,
			},
			&core.NumberField{
				Name:     "price",
				Required: true,
			},
			&core.NumberField{
				Name:    "stock",
				OnlyInt: true,
			},
			&core.NumberField{
				Name:    "min_stock",
				OnlyInt: true,
			},
			&core.RelationField{
				Name:         "supplier",
				CollectionId: suppliers.Id,
				MaxSelect:    1,
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

		collection.AddIndex("idx_products_stock", false, "stock", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("products")
		if err != nil {
			return err
		}

		return app.Delete(collection)
	})
}
