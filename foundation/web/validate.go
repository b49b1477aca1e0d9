package web

import "github.com/go-playground/validator/v10"

// validate is shared across every Decode call, as recommended by the
// validator package — it caches struct tag parsing per type.
var validate = validator.New(validator.WithRequiredStructEnabled())
