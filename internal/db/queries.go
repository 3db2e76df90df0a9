package db

const (
	// selectJobGraph pulls a comanda together with its whole order graph in
	// one round trip: order row, line items with product and category, and
	// the table numbers collapsed into a comma-separated aggregate so items
	// and tables do not cross-multiply.
	selectJobGraph = `
		SELECT
			c.id, c.comentario, c.impreso, c.creado_en,
			p.id, p.creado_en, p.para_llevar,
			d.cantidad, pr.descripcion, pr.categoria_id,
			(SELECT string_agg(m.numero::text, ',' ORDER BY pm.id)
			   FROM pedido_mesas pm
			   JOIN mesas m ON m.id = pm.mesa_id
			  WHERE pm.pedido_id = p.id) AS mesas
		FROM comandas c
		LEFT JOIN pedidos p ON p.id = c.pedido_id
		LEFT JOIN pedido_detalles d ON d.pedido_id = p.id
		LEFT JOIN productos pr ON pr.id = d.producto_id
	`

	SelectPendingJobs = selectJobGraph + `
		WHERE c.impreso = FALSE
		ORDER BY c.creado_en ASC, c.id ASC, d.id ASC
	`

	SelectJobByID = selectJobGraph + `
		WHERE c.id = $1
		ORDER BY d.id ASC
	`

	MarkJobPrinted = `
		UPDATE comandas SET impreso = TRUE WHERE id = $1
	`

	SelectClosedOrdersForDay = `
		SELECT id, creado_en, total, metodo_pago
		FROM pedidos
		WHERE cerrado = TRUE AND creado_en >= $1 AND creado_en < $2
		ORDER BY id ASC
	`

	SelectDishSalesForDay = `
		SELECT pr.descripcion, d.cantidad
		FROM pedido_detalles d
		JOIN pedidos p ON p.id = d.pedido_id
		LEFT JOIN productos pr ON pr.id = d.producto_id
		WHERE p.cerrado = TRUE AND p.creado_en >= $1 AND p.creado_en < $2
		ORDER BY p.id ASC, d.id ASC
	`
)
