package server

import "net/http"

func calculatorHandler(w http.ResponseWriter, r *http.Request) {
	html := `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <title>Monte Carlo Option Calculator</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 1.5rem; }
        form { display: grid; grid-template-columns: repeat(auto-fit, minmax(220px, 1fr)); gap: 1rem; max-width: 960px; }
        label { display: flex; flex-direction: column; font-weight: bold; }
        input, textarea { margin-top: 0.25rem; padding: 0.35rem; font-size: 1rem; }
        .actions { grid-column: 1 / -1; }
        .result { margin-top: 1rem; padding: 1rem; background: #f5f5f5; border-radius: 4px; max-width: 960px; }
        .error { color: #b00020; font-weight: bold; }
    </style>
</head>
<body>
    <h1>Monte Carlo Option Calculator</h1>
    <form id="calc">
        <label>Spot price <input type="number" step="0.01" name="spot" value="100" required></label>
        <label>Strike price <input type="number" step="0.01" name="strike" value="100" required></label>
        <label>Maturity (years) <input type="number" step="0.01" name="maturity" value="1" required></label>
        <label>Risk-free rate <input type="number" step="0.0001" name="rate" value="0.05" required></label>
        <label>Volatility <input type="number" step="0.0001" name="volatility" value="0.2" required></label>
        <label>Time steps per path <input type="number" name="steps" value="1" required></label>
        <label>Simulation paths <input type="number" name="paths" value="100000" required></label>
        <label>Random seed (optional) <input type="number" name="seed"></label>
        <label class="actions">Payoff expression
            <textarea name="payoff" rows="3">max(S - K, 0)</textarea>
            <small>Use S (or spot) for the terminal price and K (or strike) for the strike.</small>
        </label>
        <div class="actions"><button type="submit">Price option</button></div>
    </form>
    <div id="out" class="result" hidden></div>
    <script>
        document.getElementById('calc').addEventListener('submit', async function (ev) {
            ev.preventDefault();
            const f = new FormData(ev.target);
            const body = {
                spot: parseFloat(f.get('spot')),
                strike: parseFloat(f.get('strike')),
                maturity: parseFloat(f.get('maturity')),
                rate: parseFloat(f.get('rate')),
                volatility: parseFloat(f.get('volatility')),
                steps: parseInt(f.get('steps'), 10),
                paths: parseInt(f.get('paths'), 10),
                payoff: f.get('payoff')
            };
            if (f.get('seed')) body.seed = parseInt(f.get('seed'), 10);
            const out = document.getElementById('out');
            out.hidden = false;
            out.className = 'result';
            out.textContent = 'Pricing...';
            try {
                const resp = await fetch('/api/v1/price/montecarlo', {
                    method: 'POST',
                    headers: { 'Content-Type': 'application/json' },
                    body: JSON.stringify(body)
                });
                const data = await resp.json();
                if (!resp.ok) {
                    out.className = 'result error';
                    out.textContent = data.error || 'pricing failed';
                    return;
                }
                out.textContent = 'Price: ' + data.price.toFixed(4) +
                    '  (std error: ' + data.standard_error.toFixed(4) + ')';
            } catch (err) {
                out.className = 'result error';
                out.textContent = String(err);
            }
        });
    </script>
</body>
</html>`
	w.Header().Set("Content-Type", "text/html")
	_, _ = w.Write([]byte(html))
}
