package migrations

import (
	"github.com/pocketbase/pocketbase/core"
)

func init() {
	core.AppMigrations.Register(func(app core.App) error {
		employees := core.NewBaseCollection("employees")
		employees.Fields.Add(
			&core.NumberField{Id: "emp_number", Name: "number", Required: true, OnlyInt: true},
			&core.TextField{Id: "emp_code", Name: "employee_code", Required: true, Max: 64},
			&core.TextField{Id: "emp_name", Name: "full_name", Required: true, Max: 255},
			&core.TextField{Id: "emp_email", Name: "email", Required: true, Max: 255},
			&core.TextField{Id: "emp_dept", Name: "department", Required: true, Max: 255},
		)
		employees.AddIndex("idx_employees_number", true, "number", "")
		employees.AddIndex("idx_employees_code", true, "employee_code", "")
		if err := app.Save(employees); err != nil {
			return err
		}

		attendance := core.NewBaseCollection("attendance")
		attendance.Fields.Add(
			&core.NumberField{Id: "att_number", Name: "number", Required: true, OnlyInt: true},
			&core.NumberField{Id: "att_employee", Name: "employee_number", Required: true, OnlyInt: true},
			&core.TextField{Id: "att_date", Name: "date", Required: true, Max: 10, Pattern: `^\d{4}-\d{2}-\d{2}$`},
			&core.SelectField{Id: "att_status", Name: "status", Required: true, MaxSelect: 1, Values: []string{"Present", "Absent"}},
		)
		attendance.AddIndex("idx_attendance_number", true, "number", "")
		attendance.AddIndex("idx_attendance_employee", false, "employee_number", "")
		return app.Save(attendance)
	}, func(app core.App) error {
		for _, name := range []string{"attendance", "employees"} {
			collection, err := app.FindCollectionByNameOrId(name)
			if err != nil {
				return err
			}
			if err := app.Delete(collection); err != nil {
				return err
			}
		}
		return nil
	})
}
