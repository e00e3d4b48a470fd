package models

// All lists every model in dependency order
func All() []any {
	return []any{
		&TenantModel{},
		&UserModel{},
		&CompanyModel{},
		&RawMaterialModel{},
		&ProductModel{},
		&ProductMaterialModel{},
		&UsageLogModel{},
		&PurchaseOrderModel{},
		&PurchaseOrderLineModel{},
		&OrderAttachmentModel{},
		&OutboxEntryModel{},
	}
}
