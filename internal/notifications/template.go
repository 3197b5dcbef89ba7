package notifications

import "html/template"

var orderPlacedTmpl = template.Must(template.New("order_placed").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #222;">
  <h2>New order for {{.StoreName}}</h2>
  <p>A customer has placed an order through your storefront.</p>
  <table cellpadding="6" style="border-collapse: collapse;">
    {{- if .OrderID}}
    <tr><td><strong>Order ID</strong></td><td>{{.OrderID}}</td></tr>
    {{- end}}
    <tr><td><strong>Product</strong></td><td>{{.ProductName}}</td></tr>
    <tr><td><strong>Quantity</strong></td><td>{{.Quantity}}</td></tr>
    <tr><td><strong>Total</strong></td><td>{{.Total}}</td></tr>
  </table>
  <h3>Customer details</h3>
  <table cellpadding="6" style="border-collapse: collapse;">
    <tr><td><strong>Name</strong></td><td>{{.CustomerName}}</td></tr>
    <tr><td><strong>Email</strong></td><td>{{.CustomerEmail}}</td></tr>
    <tr><td><strong>Phone</strong></td><td>{{.CustomerPhone}}</td></tr>
    <tr><td><strong>Address</strong></td><td>{{.CustomerAddress}}</td></tr>
  </table>
  <p style="color: #888; font-size: 12px;">Placed {{.PlacedAt.Format "2006-01-02 15:04 MST"}}</p>
</body>
</html>
`))
