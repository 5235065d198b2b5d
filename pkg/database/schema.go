package database

import _ "embed"

// Schema contains the DDL for coupons, products, carts and cart items.
//
//go:embed migrations/001_schema.sql
var Schema string
