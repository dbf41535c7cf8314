package handler

import (
	"testing"

	"github.com/ProyectoSpoon/SPOON-sub003/internal/dto"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestValidacionPrecioEspecialPermiteCero(t *testing.T) {
	// Un precio promocional de 0 pesos es válido (combinación regalada);
	// el puntero distingue "precio": 0 de un body sin campo precio.
	cero := decimal.Zero
	assert.NoError(t, validate.Struct(dto.PrecioEspecialRequest{Precio: &cero}))
}

func TestValidacionPrecioEspecialRequierePresencia(t *testing.T) {
	assert.Error(t, validate.Struct(dto.PrecioEspecialRequest{}))
}
