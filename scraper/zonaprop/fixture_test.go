package zonaprop

// avisoInfoLiteral mirrors the shape of the block embedded in posting pages:
// single-quoted keys, trailing commas, line comments and nested features.
const avisoInfoLiteral = `{
	'idAviso': '56540649',
	'postingTitle': 'Veclapin 3 ambientes 107 m² a estrenar',
	'price': 'USD 155.000',
	'expenses': '90000',
	'pricesData': [{"currency":"USD","amount":155000,},], // pricing
	'floor': '3',
	'generalFeatures': {'Ambientes': {'1000': {'label': 'Balcón', 'value': 'null'}}, 'Servicios': {'2000': {'label': 'Ascensor', 'value': 'null'}}},
	'location': {'name': 'Palermo', 'parent': {'name': 'Capital Federal'}},
	'mainFeatures': {'CFT5': {'label': 'antigüedad', 'value': '10'}, 'CFT3': {'label': 'baño', 'value': '2'}, 'CFT2': {'label': 'dorm.', 'value': '2'}, 'CFT100': {'label': 'tot.', 'value': '107'}, 'CFT101': {'label': 'cub.', 'value': '95'}},
	'realEstateType': {'name': 'Departamento'},
	'description': 'Hermoso depto con <b>balcón</b> y ascensor.<br>Ver: &quot;la mejor vista&quot; // no es comentario',
	'address': {'name': 'Gurruchaga 123'},
	'publisherId': '778899',
	'publisher': {'name': 'Inmobiliaria Sur', 'url': 'https://www.zonaprop.com.ar/inmobiliarias/sur.html'},
	'whatsApp': '+54 9 11 5555-5555',
}`

const postingPage = `<!DOCTYPE html>
<html>
<head><title>Veclapin</title>
<script type="text/javascript">
	var dataLayer = [];
	const avisoInfo = ` + avisoInfoLiteral + `;
	const otherThing = {'x': 1};
</script>
</head>
<body><h1>Veclapin</h1></body>
</html>`

const searchPage = `<html><body>
<script id="preloadedData" type="text/javascript">
window.__PRELOADED_STATE__ = {"listStore":{"mainEntity":[
	{"@type":"Offer","url":"https://www.zonaprop.com.ar/propiedades/depto-palermo-1.html"},
	{"@type":"Offer","url":"/propiedades/depto-belgrano-2.html"},
	{"@type":"Offer","url":"https://www.zonaprop.com.ar/propiedades/depto-palermo-1.html"}
]},"seo":{"url":"https://www.zonaprop.com.ar/departamentos-venta.html"}};
</script>
</body></html>`
