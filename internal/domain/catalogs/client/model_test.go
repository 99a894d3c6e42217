package client

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validIndividual() *Client {
	c := New("org-1", TypeIndividual)
	c.FirstName = "Marie"
	c.LastName = "Dupont"
	c.Email = "marie.dupont@example.fr"
	c.Address = "12 rue de la Paix"
	c.City = "Paris"
	c.PostalCode = "75002"
	return c
}

func validBusiness() *Client {
	c := New("org-1", TypeBusiness)
	c.CompanyName = "Dupont SARL"
	c.SIRET = "12345678901234"
	c.Email = "contact@dupont-sarl.fr"
	c.Address = "3 avenue des Champs"
	c.City = "Lyon"
	c.PostalCode = "69001"
	return c
}

func TestClientValidate(t *testing.T) {
	ctx := context.Background()

	t.Run("valid individual", func(t *testing.T) {
		assert.NoError(t, validIndividual().Validate(ctx))
	})

	t.Run("valid business", func(t *testing.T) {
		assert.NoError(t, validBusiness().Validate(ctx))
	})

	t.Run("individual requires first and last name", func(t *testing.T) {
		c := validIndividual()
		c.LastName = ""
		assert.Error(t, c.Validate(ctx))
	})

	t.Run("individual cannot carry a SIRET", func(t *testing.T) {
		c := validIndividual()
		c.SIRET = "12345678901234"
		assert.Error(t, c.Validate(ctx))
	})

	t.Run("business requires company name", func(t *testing.T) {
		c := validBusiness()
		c.CompanyName = ""
		assert.Error(t, c.Validate(ctx))
	})

	t.Run("business requires SIRET", func(t *testing.T) {
		c := validBusiness()
		c.SIRET = ""
		assert.Error(t, c.Validate(ctx))
	})

	t.Run("SIRET must be 14 digits", func(t *testing.T) {
		c := validBusiness()
		c.SIRET = "123"
		assert.Error(t, c.Validate(ctx))
	})

	t.Run("email format is checked", func(t *testing.T) {
		c := validIndividual()
		c.Email = "not-an-email"
		assert.Error(t, c.Validate(ctx))
	})

	t.Run("address fields are mandatory", func(t *testing.T) {
		for _, clear := range []func(c *Client){
			func(c *Client) { c.Address = "" },
			func(c *Client) { c.City = "" },
			func(c *Client) { c.PostalCode = "" },
		} {
			c := validIndividual()
			clear(c)
			assert.Error(t, c.Validate(ctx))
		}
	})
}

func TestClientDisplayName(t *testing.T) {
	ind := validIndividual()
	assert.Equal(t, "Marie Dupont", ind.DisplayName())

	biz := validBusiness()
	assert.Equal(t, "Dupont SARL", biz.DisplayName())
}

func TestClientSyncName(t *testing.T) {
	c := validIndividual()
	assert.Empty(t, c.Name)

	assert.NoError(t, c.Validate(context.Background()))
	assert.Equal(t, "Marie Dupont", c.Name)
}
