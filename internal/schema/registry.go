//-------------------------------------------------------------------------
//
// pgEdge Care ETL
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package schema

import "fmt"

// Transactional entities (source store).
var (
	Employee = &Entity{
		Name: "Employee", Table: "employee", Kind: Transactional, Key: "employee_id",
		Description: "Care staff and their reporting line",
		Attributes: []Attribute{
			{Name: "employee_id", Type: Integer},
			{Name: "name", Type: Text},
			{Name: "address", Type: Text},
			{Name: "job_title", Type: Text},
			{Name: "employee_type", Type: Text},
			{Name: "salary_rate", Type: Decimal},
			{Name: "reports_to", Type: Integer, Nullable: true, References: "Employee"},
		},
	}

	Client = &Entity{
		Name: "Client", Table: "client", Kind: Transactional, Key: "client_id",
		Description: "Clients receiving services",
		Attributes: []Attribute{
			{Name: "client_id", Type: Integer},
			{Name: "name", Type: Text},
			{Name: "address", Type: Text},
			{Name: "contact_info", Type: Text},
		},
	}

	ServiceType = &Entity{
		Name: "ServiceType", Table: "service_type", Kind: Transactional, Key: "service_type_id",
		Description: "Catalog of billable service types",
		Attributes: []Attribute{
			{Name: "service_type_id", Type: Integer},
			{Name: "service_name", Type: Text},
			{Name: "rate", Type: Decimal},
			{Name: "requires_certification", Type: Bool},
		},
	}

	Asset = &Entity{
		Name: "Asset", Table: "asset", Kind: Transactional, Key: "asset_id",
		Description: "Rentable units and equipment",
		Attributes: []Attribute{
			{Name: "asset_id", Type: Integer},
			{Name: "asset_type", Type: Text},
			{Name: "location", Type: Text},
			{Name: "monthly_rent", Type: Decimal},
		},
	}

	Renter = &Entity{
		Name: "Renter", Table: "renter", Kind: Transactional, Key: "renter_id",
		Description: "Residents renting assets",
		Attributes: []Attribute{
			{Name: "renter_id", Type: Integer},
			{Name: "name", Type: Text},
			{Name: "emergency_contact", Type: Text},
			{Name: "family_doctor", Type: Text},
		},
	}

	Payment = &Entity{
		Name: "Payment", Table: "payment", Kind: Transactional, Key: "payment_id",
		Description: "Payroll payments to employees",
		Attributes: []Attribute{
			{Name: "payment_id", Type: Integer},
			{Name: "employee_id", Type: Integer, References: "Employee"},
			{Name: "pay_date", Type: Date},
			{Name: "over_time_pay", Type: Decimal, Nullable: true},
			{Name: "deductions", Type: Decimal, Nullable: true},
			{Name: "base_pay", Type: Decimal, Nullable: true},
		},
	}

	Shift = &Entity{
		Name: "Shift", Table: "shift", Kind: Transactional, Key: "shift_id",
		Description: "Worked shifts",
		Attributes: []Attribute{
			{Name: "shift_id", Type: Integer},
			{Name: "employee_id", Type: Integer, References: "Employee"},
			{Name: "start_time", Type: Timestamp},
			{Name: "end_time", Type: Timestamp},
			{Name: "is_on_call", Type: Bool},
		},
	}

	// Service is overloaded: one row is at once a scheduled assignment,
	// an invoice line and a registration event.
	Service = &Entity{
		Name: "Service", Table: "service", Kind: Transactional, Key: "service_id",
		Description: "Scheduled, invoiced and registered services",
		Attributes: []Attribute{
			{Name: "service_id", Type: Integer},
			{Name: "service_type_id", Type: Integer, References: "ServiceType"},
			{Name: "employee_id", Type: Integer, References: "Employee"},
			{Name: "client_id", Type: Integer, References: "Client"},
			{Name: "scheduled_date", Type: Date},
			{Name: "registration_date", Type: Date},
			{Name: "total_amount", Type: Decimal},
			{Name: "is_paid", Type: Bool},
		},
	}

	AssetRent = &Entity{
		Name: "AssetRent", Table: "asset_rent", Kind: Transactional, Key: "asset_rent_id",
		Description: "Rental periods of assets by renters",
		Attributes: []Attribute{
			{Name: "asset_rent_id", Type: Integer},
			{Name: "asset_id", Type: Integer, References: "Asset"},
			{Name: "renter_id", Type: Integer, References: "Renter"},
			{Name: "start_date", Type: Date},
			{Name: "end_date", Type: Date, Nullable: true},
		},
	}
)

// Dimension entities.
var (
	DimEmployee = &Entity{
		Name: "DimEmployee", Table: "dim_employee", Kind: Dimension, Source: "Employee", Key: "employee_id",
		Description: "Employee dimension",
		Attributes: []Attribute{
			{Name: "employee_id", Type: Integer, Source: "employee_id"},
			{Name: "name", Type: Text, Source: "name"},
			{Name: "address", Type: Text, Source: "address"},
			{Name: "job_title", Type: Text, Source: "job_title"},
			{Name: "employee_type", Type: Text, Source: "employee_type"},
			{Name: "salary_rate", Type: Decimal, Source: "salary_rate"},
			{Name: "reports_to", Type: Integer, Nullable: true, Source: "reports_to"},
		},
	}

	DimClient = &Entity{
		Name: "DimClient", Table: "dim_client", Kind: Dimension, Source: "Client", Key: "client_id",
		Description: "Client dimension",
		Attributes: []Attribute{
			{Name: "client_id", Type: Integer, Source: "client_id"},
			{Name: "name", Type: Text, Source: "name"},
			{Name: "address", Type: Text, Source: "address"},
			{Name: "contact_info", Type: Text, Source: "contact_info"},
		},
	}

	DimService = &Entity{
		Name: "DimService", Table: "dim_service", Kind: Dimension, Source: "ServiceType", Key: "service_id",
		Description: "Service type dimension",
		Attributes: []Attribute{
			{Name: "service_id", Type: Integer, Source: "service_type_id"},
			{Name: "service_name", Type: Text, Source: "service_name"},
			{Name: "rate", Type: Decimal, Source: "rate"},
			{Name: "requires_certification", Type: Bool, Source: "requires_certification"},
		},
	}

	DimAsset = &Entity{
		Name: "DimAsset", Table: "dim_asset", Kind: Dimension, Source: "Asset", Key: "asset_id",
		Description: "Asset dimension",
		Attributes: []Attribute{
			{Name: "asset_id", Type: Integer, Source: "asset_id"},
			{Name: "asset_type", Type: Text, Source: "asset_type"},
			{Name: "location", Type: Text, Source: "location"},
			{Name: "monthly_rent", Type: Decimal, Source: "monthly_rent"},
		},
	}

	DimRenter = &Entity{
		Name: "DimRenter", Table: "dim_renter", Kind: Dimension, Source: "Renter", Key: "renter_id",
		Description: "Renter dimension",
		Attributes: []Attribute{
			{Name: "renter_id", Type: Integer, Source: "renter_id"},
			{Name: "name", Type: Text, Source: "name"},
			{Name: "emergency_contact", Type: Text, Source: "emergency_contact"},
			{Name: "family_doctor", Type: Text, Source: "family_doctor"},
		},
	}
)

// Fact entities.
var (
	FactPayroll = &Entity{
		Name: "FactPayroll", Table: "fact_payroll", Kind: Fact, Source: "Payment", Key: "payroll_id",
		Description: "Payroll with net pay computed at load time",
		Attributes: []Attribute{
			{Name: "payroll_id", Type: Integer, Source: "payment_id"},
			{Name: "dim_employee_id", Type: Integer, Source: "employee_id", References: "DimEmployee"},
			{Name: "pay_date", Type: Date, Source: "pay_date"},
			{Name: "base_salary", Type: Decimal},
			{Name: "over_time_pay", Type: Decimal},
			{Name: "deductions", Type: Decimal},
			{Name: "net_pay", Type: Decimal},
		},
	}

	FactShifts = &Entity{
		Name: "FactShifts", Table: "fact_shifts", Kind: Fact, Source: "Shift", Key: "shift_id",
		Description: "Worked shifts",
		Attributes: []Attribute{
			{Name: "shift_id", Type: Integer, Source: "shift_id"},
			{Name: "dim_employee_id", Type: Integer, Source: "employee_id", References: "DimEmployee"},
			{Name: "start_time", Type: Timestamp, Source: "start_time"},
			{Name: "end_time", Type: Timestamp, Source: "end_time"},
			{Name: "is_on_call", Type: Bool, Source: "is_on_call"},
		},
	}

	FactAttendance = &Entity{
		Name: "FactAttendance", Table: "fact_attendance", Kind: Fact, Source: "Shift", Key: "attendance_id",
		Description: "Attendance keyed by shift; holiday and vacation are not tracked at source",
		Attributes: []Attribute{
			{Name: "attendance_id", Type: Integer, Source: "shift_id"},
			{Name: "dim_employee_id", Type: Integer, Source: "employee_id", References: "DimEmployee"},
			{Name: "fact_shifts_id", Type: Integer, Source: "shift_id", References: "FactShifts"},
			{Name: "is_holiday", Type: Bool},
			{Name: "is_vacation", Type: Bool},
			{Name: "is_on_call", Type: Bool, Source: "is_on_call"},
		},
	}

	FactServiceAssignment = &Entity{
		Name: "FactServiceAssignment", Table: "fact_service_assignment", Kind: Fact, Source: "Service", Key: "assigned_id",
		Description: "Who delivers which service when",
		Attributes: []Attribute{
			{Name: "assigned_id", Type: Integer, Source: "service_id"},
			{Name: "dim_employee_id", Type: Integer, Source: "employee_id", References: "DimEmployee"},
			{Name: "dim_service_id", Type: Integer, Source: "service_type_id", References: "DimService"},
			{Name: "scheduled_date", Type: Date, Source: "scheduled_date"},
		},
	}

	FactInvoice = &Entity{
		Name: "FactInvoice", Table: "fact_invoice", Kind: Fact, Source: "Service", Key: "invoice_id",
		Description: "Billable service lines",
		Attributes: []Attribute{
			{Name: "invoice_id", Type: Integer, Source: "service_id"},
			{Name: "dim_client_id", Type: Integer, Source: "client_id", References: "DimClient"},
			{Name: "dim_service_id", Type: Integer, Source: "service_type_id", References: "DimService"},
			{Name: "invoice_date", Type: Date, Source: "scheduled_date"},
			{Name: "total_amount", Type: Decimal, Source: "total_amount"},
			{Name: "is_paid", Type: Bool, Source: "is_paid"},
		},
	}

	FactServiceRegistration = &Entity{
		Name: "FactServiceRegistration", Table: "fact_service_registration", Kind: Fact, Source: "Service", Key: "registration_id",
		Description: "Service registration events",
		Attributes: []Attribute{
			{Name: "registration_id", Type: Integer, Source: "service_id"},
			{Name: "dim_client_id", Type: Integer, Source: "client_id", References: "DimClient"},
			{Name: "dim_service_id", Type: Integer, Source: "service_type_id", References: "DimService"},
			{Name: "registration_date", Type: Date, Source: "registration_date"},
		},
	}

	// FactDamageReport has no transactional source. Its rows are
	// generated, one per asset, for demonstration reporting.
	FactDamageReport = &Entity{
		Name: "FactDamageReport", Table: "fact_damage_report", Kind: Fact, Source: "Asset", Key: "report_id",
		Synthetic:   true,
		Description: "SYNTHETIC: one generated damage report per asset",
		Attributes: []Attribute{
			{Name: "report_id", Type: Integer},
			{Name: "dim_asset_id", Type: Integer, Source: "asset_id", References: "DimAsset"},
			{Name: "report_date", Type: Date},
			{Name: "repair_cost", Type: Decimal},
			{Name: "description", Type: Text},
		},
	}

	FactRentalHistory = &Entity{
		Name: "FactRentalHistory", Table: "fact_rental_history", Kind: Fact, Source: "AssetRent", Key: "history_id",
		Description: "Rental periods with the asset's rent amount",
		Attributes: []Attribute{
			{Name: "history_id", Type: Integer},
			{Name: "dim_asset_id", Type: Integer, Source: "asset_id", References: "DimAsset"},
			{Name: "dim_renter_id", Type: Integer, Source: "renter_id", References: "DimRenter"},
			{Name: "start_date", Type: Date, Source: "start_date"},
			{Name: "end_date", Type: Date, Nullable: true, Source: "end_date"},
			{Name: "rent_amount", Type: Decimal},
		},
	}
)

// TransactionalEntities returns the source entities, referenced before
// referencing.
func TransactionalEntities() []*Entity {
	return []*Entity{Employee, Client, ServiceType, Asset, Renter, Payment, Shift, Service, AssetRent}
}

// Dimensions returns the dimension entities in load order.
func Dimensions() []*Entity {
	return []*Entity{DimEmployee, DimClient, DimService, DimAsset, DimRenter}
}

// Facts returns the fact entities in load order.
func Facts() []*Entity {
	return []*Entity{
		FactPayroll, FactShifts, FactAttendance, FactServiceAssignment,
		FactInvoice, FactServiceRegistration, FactDamageReport, FactRentalHistory,
	}
}

// Analytical returns every analytical entity in load order.
func Analytical() []*Entity {
	return append(Dimensions(), Facts()...)
}

// ResetOrder returns the analytical entities in an order where every
// referencing entity precedes the entities it references.
func ResetOrder() []*Entity {
	return []*Entity{
		FactAttendance, FactPayroll, FactShifts, FactServiceAssignment, FactInvoice,
		FactServiceRegistration, FactDamageReport, FactRentalHistory,
		DimEmployee, DimClient, DimService, DimAsset, DimRenter,
	}
}

// All returns every registered entity.
func All() []*Entity {
	return append(TransactionalEntities(), Analytical()...)
}

// Lookup finds an entity by logical name.
func Lookup(name string) (*Entity, error) {
	for _, e := range All() {
		if e.Name == name {
			return e, nil
		}
	}
	return nil, fmt.Errorf("unknown entity: %s", name)
}
