package xero

import "github.com/goliatone/go-xero/resource"

// Named accessors for the standard accounting collections.

func (c *Client) Accounts() *resource.Manager         { return c.Collection("Accounts") }
func (c *Client) BankTransactions() *resource.Manager { return c.Collection("BankTransactions") }
func (c *Client) Contacts() *resource.Manager         { return c.Collection("Contacts") }
func (c *Client) CreditNotes() *resource.Manager      { return c.Collection("CreditNotes") }
func (c *Client) Currencies() *resource.Manager       { return c.Collection("Currencies") }
func (c *Client) Invoices() *resource.Manager         { return c.Collection("Invoices") }
func (c *Client) Items() *resource.Manager            { return c.Collection("Items") }
func (c *Client) Journals() *resource.Manager         { return c.Collection("Journals") }
func (c *Client) ManualJournals() *resource.Manager   { return c.Collection("ManualJournals") }
func (c *Client) Organisations() *resource.Manager    { return c.Collection("Organisations") }
func (c *Client) Payments() *resource.Manager         { return c.Collection("Payments") }
func (c *Client) Reports() *resource.Manager          { return c.Collection("Reports") }
func (c *Client) TaxRates() *resource.Manager         { return c.Collection("TaxRates") }
func (c *Client) TrackingCategories() *resource.Manager {
	return c.Collection("TrackingCategories")
}

// Payroll API collections, served under the payroll URL prefix.

func (c *Client) Employees() *resource.Manager  { return c.PayrollCollection("Employees") }
func (c *Client) PayItems() *resource.Manager   { return c.PayrollCollection("PayItems") }
func (c *Client) Timesheets() *resource.Manager { return c.PayrollCollection("Timesheets") }
